package convert

import (
	"testing"

	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

func TestToRangeNormalizesReversedEnds(t *testing.T) {
	r := ToRange(protocol.Range{
		Start: protocol.Position{Line: 4, Character: 2},
		End:   protocol.Position{Line: 1, Character: 0},
	})
	if r.Start.Line != 1 || r.End.Line != 4 {
		t.Errorf("expected normalized range, got %v", r)
	}
}

func TestWorkspaceEditFlattens(t *testing.T) {
	var w extapi.WorkspaceEdit
	w.Replace("file:///a.go", extapi.NewRange(0, 0, 0, 3), "foo")
	w.Replace("file:///b.go", extapi.NewRange(1, 0, 1, 3), "bar")
	w.Replace("file:///a.go", extapi.NewRange(2, 0, 2, 3), "baz")

	got := WorkspaceEdit(&w)
	if len(got.Edits) != 3 {
		t.Fatalf("expected 3 edits, got %d", len(got.Edits))
	}
	if got.Edits[0].Resource != "file:///a.go" || got.Edits[1].Resource != "file:///a.go" {
		t.Errorf("expected edits grouped by document order, got %+v", got.Edits)
	}
	if got.Edits[2].TextEdit.NewText != "bar" {
		t.Errorf("unexpected last edit %+v", got.Edits[2])
	}

	if WorkspaceEdit(nil) != nil {
		t.Error("nil workspace edit should stay nil")
	}
}

func TestDocumentSymbolRecursive(t *testing.T) {
	sym := &extapi.DocumentSymbol{
		Name:  "outer",
		Kind:  extapi.SymbolKindClass,
		Range: extapi.NewRange(0, 0, 10, 0),
		Children: []*extapi.DocumentSymbol{
			{Name: "inner", Kind: extapi.SymbolKindMethod, Range: extapi.NewRange(1, 0, 2, 0)},
			nil,
		},
	}

	got := DocumentSymbol(sym)
	if got.Name != "outer" || got.Kind != int(extapi.SymbolKindClass) {
		t.Errorf("unexpected root %+v", got)
	}
	if len(got.Children) != 1 || got.Children[0].Name != "inner" {
		t.Errorf("unexpected children %+v", got.Children)
	}
}

func TestInlineValueKinds(t *testing.T) {
	tests := []struct {
		in   extapi.InlineValue
		want string
	}{
		{extapi.InlineValue{Kind: extapi.InlineValueText, Text: "x = 1"}, protocol.InlineValueText},
		{extapi.InlineValue{Kind: extapi.InlineValueVariableLookup, VariableName: "x"}, protocol.InlineValueVariable},
		{extapi.InlineValue{Kind: extapi.InlineValueEvaluatableExpression, Expression: "x+1"}, protocol.InlineValueExpression},
	}
	for _, tt := range tests {
		if got := InlineValue(tt.in); got.Type != tt.want {
			t.Errorf("expected type %q, got %q", tt.want, got.Type)
		}
	}
}

func TestSignatureHelp(t *testing.T) {
	active := 1
	h := &extapi.SignatureHelp{
		Signatures: []extapi.SignatureInformation{{
			Label:           "f(a, b)",
			Parameters:      []extapi.ParameterInformation{{Label: "a"}, {Label: "b"}},
			ActiveParameter: &active,
		}},
		ActiveParameter: 1,
	}

	got := SignatureHelp(h)
	if len(got.Signatures) != 1 || len(got.Signatures[0].Parameters) != 2 {
		t.Fatalf("unexpected signatures %+v", got.Signatures)
	}
	if got.Signatures[0].ActiveParameter == nil || *got.Signatures[0].ActiveParameter != 1 {
		t.Error("expected active parameter to carry over")
	}
}

func TestDiagnosticRoundTrip(t *testing.T) {
	d := extapi.Diagnostic{
		Range:    extapi.NewRange(1, 2, 1, 5),
		Message:  "unused",
		Severity: extapi.SeverityWarning,
		Tags:     []extapi.DiagnosticTag{extapi.DiagnosticTagUnnecessary},
	}
	back := ToDiagnostic(Diagnostic(d))
	if back.Range != d.Range || back.Message != d.Message || back.Severity != d.Severity || len(back.Tags) != 1 {
		t.Errorf("diagnostic did not survive conversion: %+v", back)
	}
}
