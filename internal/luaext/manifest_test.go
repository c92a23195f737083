package luaext

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`
name: go-tools
publisher: acme
version: 1.2.0
displayName: Go Tools
languages: [go]
commands:
  - id: acme.format
    title: Format
`))
	if err != nil {
		t.Fatalf("ParseManifest error = %v", err)
	}
	if m.ID() != "acme.go-tools" {
		t.Errorf("Expected id acme.go-tools, got %q", m.ID())
	}
	if m.Main != DefaultMain {
		t.Errorf("Expected default main, got %q", m.Main)
	}
	if len(m.Commands) != 1 || m.Commands[0].ID != "acme.format" {
		t.Errorf("Unexpected commands %+v", m.Commands)
	}
	ext := m.Extension()
	if ext.ID != "acme.go-tools" || ext.DisplayName != "Go Tools" || ext.Version != "1.2.0" {
		t.Errorf("Unexpected extension %+v", ext)
	}
}

func TestParseManifest_JSON(t *testing.T) {
	m, err := ParseManifest([]byte(`{"name": "json-ext", "main": "main.lua"}`))
	if err != nil {
		t.Fatalf("ParseManifest error = %v", err)
	}
	if m.ID() != "json-ext" || m.Main != "main.lua" || m.Version != "0.0.0" {
		t.Errorf("Unexpected manifest %+v", m)
	}
}

func TestParseManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"missing name", `version: 1.0.0`, ErrMissingName},
		{"bad name", `name: Bad_Name`, ErrInvalidName},
		{"bad version", "name: ok\nversion: one", ErrInvalidVersion},
		{"bad main", "name: ok\nmain: init.py", ErrInvalidMain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := ParseManifest([]byte("name: [")); err == nil {
		t.Error("Expected a parse error")
	}
}

func TestFindManifest(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindManifest(dir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "extension.yml"), []byte("name: found"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := FindManifest(dir)
	if err != nil {
		t.Fatalf("FindManifest error = %v", err)
	}
	if m.Dir() != dir || m.Origin() != dir {
		t.Errorf("Expected dir %s, got %s", dir, m.Dir())
	}
	if m.MainPath() != filepath.Join(dir, DefaultMain) {
		t.Errorf("Unexpected main path %s", m.MainPath())
	}
}

func TestManifestForScript(t *testing.T) {
	m := manifestForScript("/ext/hello.lua")
	if m.Name != "hello" || m.Main != "hello.lua" {
		t.Errorf("Unexpected manifest %+v", m)
	}
	if m.Origin() != filepath.Join("/ext", "hello.lua") {
		t.Errorf("Expected script origin, got %s", m.Origin())
	}
}
