package parser

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"introspect/internal/model"
)

// opKind is one declarator applied to the base type.
type opKind int

const (
	opPointer opKind = iota
	opLValue
	opRValue
	opArray
)

type typeOp struct {
	kind opKind
	// cv qualifies the pointer itself ("int* const").
	cv   model.CV
	size uint64
}

// TypeSpelling is a parsed type reference: a qualified base name followed by
// pointer, reference and array declarators, innermost first.
type TypeSpelling struct {
	Base string
	CV   model.CV
	ops  []typeOp
}

// ParseSpelling parses "cv* base cv* (* cv* | & | && | [N])*". The base may span
// several words ("unsigned long long") and carry template arguments
// ("std::map<int, std::vector<int>>").
func ParseSpelling(s string) (*TypeSpelling, error) {
	lex := &lexer{src: s}
	ts := &TypeSpelling{}
	var words []string

	for {
		tok, err := lex.next()
		if err != nil {
			return nil, errors.Wrapf(err, "type %q", s)
		}
		switch tok {
		case "":
			if len(words) == 0 {
				return nil, errors.Newf("type %q has no base name", s)
			}
			ts.Base = strings.Join(words, " ")
			return ts, nil
		case "const", "volatile":
			cv := model.MakeCV(tok == "const", tok == "volatile")
			if n := len(ts.ops); n > 0 {
				if ts.ops[n-1].kind != opPointer {
					return nil, errors.Newf("type %q: %s applied to a reference or array", s, tok)
				}
				ts.ops[n-1].cv = ts.ops[n-1].cv.Add(cv)
			} else {
				ts.CV = ts.CV.Add(cv)
			}
		case "*":
			ts.ops = append(ts.ops, typeOp{kind: opPointer})
		case "&":
			ts.ops = append(ts.ops, typeOp{kind: opLValue})
		case "&&":
			ts.ops = append(ts.ops, typeOp{kind: opRValue})
		case "[":
			size, err := lex.arraySize()
			if err != nil {
				return nil, errors.Wrapf(err, "type %q", s)
			}
			ts.ops = append(ts.ops, typeOp{kind: opArray, size: size})
		default:
			if len(ts.ops) > 0 {
				return nil, errors.Newf("type %q: unexpected %q after declarator", s, tok)
			}
			words = append(words, tok)
		}
	}
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n') {
		l.pos++
	}
}

// next returns the next token, or "" at the end of input.
func (l *lexer) next() (string, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return "", nil
	}
	switch c := l.src[l.pos]; c {
	case '*', '[':
		l.pos++
		return string(c), nil
	case '&':
		if strings.HasPrefix(l.src[l.pos:], "&&") {
			l.pos += 2
			return "&&", nil
		}
		l.pos++
		return "&", nil
	}

	start := l.pos
	depth := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '<':
			depth++
		case c == '>':
			depth--
			if depth < 0 {
				return "", errors.Newf("unbalanced '>' at offset %d", l.pos)
			}
		case depth > 0:
			// Template arguments may contain anything up to the closing bracket.
		case isNameByte(c):
		default:
			if l.pos == start {
				return "", errors.Newf("unexpected %q at offset %d", c, l.pos)
			}
			return l.src[start:l.pos], nil
		}
		l.pos++
	}
	if depth != 0 {
		return "", errors.New("unbalanced '<'")
	}
	return l.src[start:l.pos], nil
}

// arraySize reads "N]" after an opening bracket.
func (l *lexer) arraySize() (uint64, error) {
	end := strings.IndexByte(l.src[l.pos:], ']')
	if end < 0 {
		return 0, errors.New("unterminated array bound")
	}
	bound := strings.TrimSpace(l.src[l.pos : l.pos+end])
	l.pos += end + 1
	size, err := strconv.ParseUint(bound, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "array bound %q", bound)
	}
	return size, nil
}

func isNameByte(c byte) bool {
	return c == '_' || c == ':' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
