package luaext

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/langbridge/internal/extapi"
)

// ManifestFiles are the manifest names looked up in an extension
// directory, in order. YAML is a superset of JSON, so one decoder reads
// all of them.
var ManifestFiles = []string{"extension.yaml", "extension.yml", "extension.json"}

// DefaultMain is the entry script of a directory without a manifest main.
const DefaultMain = "init.lua"

// Manifest describes an extension.
type Manifest struct {
	Name        string `yaml:"name" json:"name"`
	Publisher   string `yaml:"publisher" json:"publisher"`
	Version     string `yaml:"version" json:"version"`
	DisplayName string `yaml:"displayName" json:"displayName"`
	Description string `yaml:"description" json:"description"`
	Main        string `yaml:"main" json:"main"`

	// Languages lists the language ids the extension serves. It is
	// informational; selectors passed to register calls decide routing.
	Languages []string `yaml:"languages" json:"languages"`

	// Commands declares commands the extension registers.
	Commands []CommandContribution `yaml:"commands" json:"commands"`

	dir    string
	script bool
}

// CommandContribution declares a command.
type CommandContribution struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}

var (
	namePattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*$`)
	semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)
)

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes and validates a YAML or JSON manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindManifest loads the manifest of dir. It returns os.ErrNotExist when
// the directory has none.
func FindManifest(dir string) (*Manifest, error) {
	for _, name := range ManifestFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadManifest(path)
		}
	}
	return nil, os.ErrNotExist
}

// manifestForScript builds the manifest of a single-file extension.
func manifestForScript(path string) *Manifest {
	m := &Manifest{
		Name: strings.TrimSuffix(filepath.Base(path), ".lua"),
		Main:   filepath.Base(path),
		dir:    filepath.Dir(path),
		script: true,
	}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Main == "" {
		m.Main = DefaultMain
	}
	if m.Version == "" {
		m.Version = "0.0.0"
	}
}

// Validate checks the manifest.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return ErrMissingName
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: %s", ErrInvalidName, m.Name)
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("%w: %s", ErrInvalidVersion, m.Version)
	}
	if filepath.Ext(m.Main) != ".lua" {
		return fmt.Errorf("%w: %s", ErrInvalidMain, m.Main)
	}
	for i, c := range m.Commands {
		if c.ID == "" {
			return fmt.Errorf("manifest: command id is required at index %d", i)
		}
	}
	return nil
}

// ID is publisher.name, or name without a publisher.
func (m *Manifest) ID() string {
	if m.Publisher == "" {
		return m.Name
	}
	return m.Publisher + "." + m.Name
}

// Dir is the extension directory.
func (m *Manifest) Dir() string { return m.dir }

// Origin is the path the extension is loaded from: the script of a
// single-file extension, the directory otherwise.
func (m *Manifest) Origin() string {
	if m.script {
		return m.MainPath()
	}
	return m.dir
}

// MainPath is the full path of the entry script.
func (m *Manifest) MainPath() string { return filepath.Join(m.dir, m.Main) }

// Extension returns the identity registered with the bridge.
func (m *Manifest) Extension() extapi.Extension {
	return extapi.Extension{ID: m.ID(), DisplayName: m.DisplayName, Version: m.Version}
}

func isNotExist(err error) bool { return errors.Is(err, os.ErrNotExist) }
