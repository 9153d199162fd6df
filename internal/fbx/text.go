package fbx

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	tokDatum = iota
	tokQuoted
	tokColon
	tokOpen
	tokClose
	tokComma
)

// textLexer is compiled once at init and only read afterwards, so one
// instance serves concurrent parses.
var textLexer *lexmachine.Lexer

func init() {
	textLexer = lexmachine.NewLexer()
	textLexer.Add([]byte(`;[^\n]*`), skipToken)
	textLexer.Add([]byte(`[ \t\r\n]+`), skipToken)
	textLexer.Add([]byte(`:`), emit(tokColon))
	textLexer.Add([]byte(`\{`), emit(tokOpen))
	textLexer.Add([]byte(`\}`), emit(tokClose))
	textLexer.Add([]byte(`,`), emit(tokComma))
	textLexer.Add([]byte(`"([^"\\]|\\[^"]|\\")*"`), emit(tokQuoted))
	textLexer.Add([]byte(`[^ \t\r\n;:{},"]+`), emit(tokDatum))
	if err := textLexer.Compile(); err != nil {
		panic(err)
	}
}

func emit(kind int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(kind, string(m.Bytes), m), nil
	}
}

func skipToken(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

type token struct {
	kind int
	text string
	line int
}

func tokenize(data []byte) ([]token, error) {
	scanner, err := textLexer.Scanner(data)
	if err != nil {
		return nil, errors.Wrap(err, "fbx: text scanner")
	}
	var toks []token
	for tk, err, eos := scanner.Next(); !eos; tk, err, eos = scanner.Next() {
		if err != nil {
			line := 0
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				line = ui.FailLine
			}
			return nil, &FormatError{Offset: int64(line), Err: ErrSyntax}
		}
		t := tk.(*lexmachine.Token)
		tok := token{kind: t.Type, text: t.Value.(string), line: t.StartLine}
		if tok.kind == tokQuoted {
			tok.kind = tokDatum
			tok.text = unquote(tok.text)
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

// unquote strips the surrounding quotes. An escaped quote becomes a quote;
// any other backslash pair is kept verbatim.
func unquote(s string) string {
	s = s[1 : len(s)-1]
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			if s[i+1] == '"' {
				sb.WriteByte('"')
			} else {
				sb.WriteByte('\\')
				sb.WriteByte(s[i+1])
			}
			i++
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

type textParser struct {
	toks []token
	pos  int
	b    *treeBuilder
}

func (p *textParser) next() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	t := p.toks[p.pos]
	p.pos++
	return t, true
}

func (p *textParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func parseText(data []byte) (*Tree, error) {
	toks, err := tokenize(data)
	if err != nil {
		return nil, err
	}
	p := &textParser{toks: toks, b: newTreeBuilder()}
	var top []int32
	for p.pos < len(p.toks) {
		idx, ok := p.node()
		if !ok {
			break
		}
		top = append(top, idx)
	}
	return p.b.finish(top), nil
}

// node parses "name: value, value {children}". ok is false when no node
// starts at the current token. A datum directly followed by ':' ends the
// node because it names the next sibling.
func (p *textParser) node() (int32, bool) {
	name, ok := p.next()
	if !ok || name.kind != tokDatum {
		return 0, false
	}
	if colon, ok := p.next(); !ok || colon.kind != tokColon {
		return 0, false
	}

	var props []Property
	var kids []int32
	expectingDatum := true
	for {
		t, ok := p.peek()
		if !ok {
			break
		}
		if t.kind == tokOpen {
			p.pos++
			for {
				idx, ok := p.node()
				if !ok {
					break
				}
				kids = append(kids, idx)
			}
			break
		}
		if t.kind == tokComma {
			p.pos++
			expectingDatum = true
			continue
		}
		if t.kind == tokDatum && expectingDatum {
			if p.pos+1 < len(p.toks) && p.toks[p.pos+1].kind == tokColon {
				break
			}
			p.pos++
			props = append(props, String(t.text))
			expectingDatum = false
			continue
		}
		break
	}
	return p.b.add(name.text, props, kids), true
}
