package highlight

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dshills/langbridge/internal/bridge"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
)

// Token types, in legend order.
const (
	TypeNamespace = iota
	TypeType
	TypeClass
	TypeFunction
	TypeVariable
	TypeProperty
	TypeKeyword
	TypeComment
	TypeString
	TypeNumber
	TypeOperator
	TypeMacro
	TypeRegexp
)

// Token modifiers, as bits.
const (
	ModReadonly = 1 << iota
	ModDefaultLibrary
	ModDocumentation
)

// Legend is the legend every document is encoded with.
var Legend = extapi.SemanticTokensLegend{
	TokenTypes: []string{
		"namespace", "type", "class", "function", "variable", "property",
		"keyword", "comment", "string", "number", "operator", "macro", "regexp",
	},
	TokenModifiers: []string{"readonly", "defaultLibrary", "documentation"},
}

// Extension is the identity the provider registers under.
var Extension = extapi.Extension{ID: "langbridge.highlight", DisplayName: "Built-in highlighting"}

// cancelCheckInterval is how many tokens are lexed between context checks.
const cancelCheckInterval = 512

// Provider serves semantic tokens for every language chroma has a lexer for.
type Provider struct {
	languages []string

	mu      sync.Mutex
	lexers  map[string]chroma.Lexer
	unknown map[string]bool
}

// New creates a provider. With no languages every document is served.
func New(languages ...string) *Provider {
	return &Provider{
		languages: languages,
		lexers:    make(map[string]chroma.Lexer),
		unknown:   make(map[string]bool),
	}
}

// Selector matches the configured languages, or every document.
func (p *Provider) Selector() extapi.DocumentSelector {
	if len(p.languages) == 0 {
		return extapi.DocumentSelector{{Pattern: "**"}}
	}
	sel := make(extapi.DocumentSelector, len(p.languages))
	for i, lang := range p.languages {
		sel[i] = extapi.DocumentFilter{Language: lang}
	}
	return sel
}

// Register registers the full and range providers with lf.
func (p *Provider) Register(lf *bridge.LanguageFeatures) dispose.Disposable {
	sel := p.Selector()
	return dispose.Combine(
		lf.RegisterDocumentSemanticTokensProvider(Extension, sel, p, Legend),
		lf.RegisterDocumentRangeSemanticTokensProvider(Extension, sel, p, Legend),
	)
}

// ProvideDocumentSemanticTokens lexes the whole document. Documents without
// a lexer have no tokens.
func (p *Provider) ProvideDocumentSemanticTokens(ctx context.Context, doc extapi.Document) (*extapi.SemanticTokens, error) {
	return p.tokens(ctx, doc, nil)
}

// ProvideDocumentRangeSemanticTokens returns the tokens on the lines rng
// touches.
func (p *Provider) ProvideDocumentRangeSemanticTokens(ctx context.Context, doc extapi.Document, rng extapi.Range) (*extapi.SemanticTokens, error) {
	return p.tokens(ctx, doc, &rng)
}

func (p *Provider) tokens(ctx context.Context, doc extapi.Document, rng *extapi.Range) (*extapi.SemanticTokens, error) {
	lexer := p.lexerFor(doc)
	if lexer == nil {
		return nil, nil
	}
	it, err := lexer.Tokenise(&chroma.TokeniseOptions{State: "root", EnsureLF: true}, doc.Text())
	if err != nil {
		return nil, err
	}

	var b builder
	line, char := 0, 0
	n := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		if n++; n%cancelCheckInterval == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		typ, mods, ok := classify(tok.Type)
		pieces := strings.Split(tok.Value, "\n")
		for i, piece := range pieces {
			if i > 0 {
				line++
				char = 0
			}
			width := utf16Len(piece)
			if ok && width > 0 && inRange(rng, line) {
				b.push(line, char, width, typ, mods)
			}
			char += width
		}
		if rng != nil && line > rng.End.Line {
			break
		}
	}
	return &extapi.SemanticTokens{Data: b.data}, nil
}

func inRange(rng *extapi.Range, line int) bool {
	return rng == nil || line >= rng.Start.Line && line <= rng.End.Line
}

// lexerFor finds a lexer by language id, then by file name.
func (p *Provider) lexerFor(doc extapi.Document) chroma.Lexer {
	lang := doc.LanguageID()
	name := fileName(doc.URI())
	key := lang + "\x00" + name

	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.lexers[key]; ok {
		return l
	}
	if p.unknown[key] {
		return nil
	}

	var l chroma.Lexer
	if lang != "" {
		l = lexers.Get(lang)
	}
	if l == nil && name != "" {
		l = lexers.Match(name)
	}
	if l == nil {
		p.unknown[key] = true
		return nil
	}
	l = chroma.Coalesce(l)
	p.lexers[key] = l
	return l
}

func fileName(uri extapi.URI) string {
	u, err := url.Parse(string(uri))
	if err != nil {
		return ""
	}
	return path.Base(u.Path)
}

// classify maps a chroma token type onto the legend. Plain identifiers,
// punctuation and text carry no semantic token.
func classify(tt chroma.TokenType) (typ int, mods uint32, ok bool) {
	switch {
	case tt == chroma.CommentPreproc || tt == chroma.CommentPreprocFile:
		return TypeMacro, 0, true
	case tt.InCategory(chroma.Comment):
		return TypeComment, 0, true

	case tt == chroma.KeywordType:
		return TypeType, 0, true
	case tt == chroma.KeywordConstant:
		return TypeKeyword, ModReadonly, true
	case tt.InCategory(chroma.Keyword):
		return TypeKeyword, 0, true

	case tt == chroma.NameFunction || tt == chroma.NameFunctionMagic:
		return TypeFunction, 0, true
	case tt == chroma.NameBuiltin:
		return TypeFunction, ModDefaultLibrary, true
	case tt == chroma.NameBuiltinPseudo:
		return TypeVariable, ModDefaultLibrary, true
	case tt == chroma.NameClass || tt == chroma.NameException:
		return TypeClass, 0, true
	case tt == chroma.NameNamespace:
		return TypeNamespace, 0, true
	case tt == chroma.NameConstant:
		return TypeVariable, ModReadonly, true
	case isVariable(tt):
		return TypeVariable, 0, true
	case tt == chroma.NameAttribute || tt == chroma.NameProperty:
		return TypeProperty, 0, true
	case tt == chroma.NameTag:
		return TypeType, 0, true
	case tt == chroma.NameDecorator:
		return TypeMacro, 0, true

	case tt == chroma.LiteralStringRegex:
		return TypeRegexp, 0, true
	case tt == chroma.LiteralStringDoc:
		return TypeString, ModDocumentation, true
	case tt.InSubCategory(chroma.LiteralString):
		return TypeString, 0, true
	case tt.InSubCategory(chroma.LiteralNumber):
		return TypeNumber, 0, true

	case tt == chroma.OperatorWord:
		return TypeKeyword, 0, true
	case tt.InCategory(chroma.Operator):
		return TypeOperator, 0, true
	}
	return 0, 0, false
}

func isVariable(tt chroma.TokenType) bool {
	switch tt {
	case chroma.NameVariable, chroma.NameVariableAnonymous, chroma.NameVariableClass,
		chroma.NameVariableGlobal, chroma.NameVariableInstance, chroma.NameVariableMagic:
		return true
	}
	return false
}

// builder accumulates tokens in the relative five-integer encoding.
type builder struct {
	data     []uint32
	prevLine int
	prevChar int
}

func (b *builder) push(line, char, length, typ int, mods uint32) {
	deltaLine := line - b.prevLine
	deltaChar := char
	if deltaLine == 0 {
		deltaChar = char - b.prevChar
	}
	b.data = append(b.data, uint32(deltaLine), uint32(deltaChar), uint32(length), uint32(typ), mods)
	b.prevLine, b.prevChar = line, char
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
