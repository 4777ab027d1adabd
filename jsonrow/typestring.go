package jsonrow

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseType parses a compact type string into a schema tree.
//
// Grammar (type names case-insensitive):
//
//	BOOLEAN | INT | BIGINT | FLOAT | DOUBLE | STRING | BYTES
//	DATE | TIME | TIMESTAMP | TIMESTAMP_LTZ
//	DECIMAL(p, s)
//	ARRAY<T>
//	MAP<K, V>
//	ROW<name T, name T, ...>
//
// Every type is nullable unless suffixed with NOT NULL; an explicit
// NULL suffix is also accepted. Type.String() renders this grammar
// back, so ParseType and String round-trip.
func ParseType(input string) (*Type, error) {
	toks, err := scanTypeTokens(input)
	if err != nil {
		return nil, err
	}
	p := &typeParser{toks: toks}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, fmt.Errorf("jsonrow: unexpected trailing input %q in type string", p.peek().text)
	}
	return t, nil
}

// ============================================================
// Scanner
// ============================================================

type typeTokenKind uint8

const (
	ttIdent typeTokenKind = iota
	ttInt
	ttLAngle
	ttRAngle
	ttLParen
	ttRParen
	ttComma
	ttEOF
)

type typeToken struct {
	kind typeTokenKind
	text string
}

func scanTypeTokens(input string) ([]typeToken, error) {
	var toks []typeToken
	i := 0
	for i < len(input) {
		c := rune(input[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '<':
			toks = append(toks, typeToken{ttLAngle, "<"})
			i++
		case c == '>':
			toks = append(toks, typeToken{ttRAngle, ">"})
			i++
		case c == '(':
			toks = append(toks, typeToken{ttLParen, "("})
			i++
		case c == ')':
			toks = append(toks, typeToken{ttRParen, ")"})
			i++
		case c == ',':
			toks = append(toks, typeToken{ttComma, ","})
			i++
		case unicode.IsDigit(c):
			j := i
			for j < len(input) && unicode.IsDigit(rune(input[j])) {
				j++
			}
			toks = append(toks, typeToken{ttInt, input[i:j]})
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(input) {
				r := rune(input[j])
				if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
					break
				}
				j++
			}
			toks = append(toks, typeToken{ttIdent, input[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("jsonrow: unexpected character %q in type string", c)
		}
	}
	toks = append(toks, typeToken{ttEOF, ""})
	return toks, nil
}

// ============================================================
// Parser
// ============================================================

type typeParser struct {
	toks []typeToken
	pos  int
}

func (p *typeParser) peek() typeToken {
	return p.toks[p.pos]
}

func (p *typeParser) advance() typeToken {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *typeParser) match(kind typeTokenKind) bool {
	if p.toks[p.pos].kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *typeParser) expect(kind typeTokenKind, what string) (typeToken, error) {
	t := p.peek()
	if t.kind != kind {
		return typeToken{}, fmt.Errorf("jsonrow: expected %s in type string, got %q", what, t.text)
	}
	return p.advance(), nil
}

func (p *typeParser) atEnd() bool {
	return p.peek().kind == ttEOF
}

func (p *typeParser) parseType() (*Type, error) {
	tok, err := p.expect(ttIdent, "type name")
	if err != nil {
		return nil, err
	}
	name := strings.ToUpper(tok.text)

	var t *Type
	switch name {
	case "BOOLEAN":
		t = BooleanType()
	case "INT", "INTEGER":
		t = IntType()
	case "BIGINT":
		t = BigIntType()
	case "FLOAT":
		t = FloatType()
	case "DOUBLE":
		t = DoubleType()
	case "STRING", "VARCHAR":
		t = StringType()
	case "BYTES", "BINARY", "VARBINARY":
		t = BinaryType()
	case "DATE":
		t = DateType()
	case "TIME":
		t = TimeType()
	case "TIMESTAMP":
		t = TimestampType()
	case "TIMESTAMP_LTZ":
		t = TimestampLTZType()
	case "DECIMAL", "NUMERIC":
		t, err = p.parseDecimal()
	case "ARRAY":
		t, err = p.parseArray()
	case "MAP":
		t, err = p.parseMap()
	case "ROW":
		t, err = p.parseRow()
	default:
		return nil, fmt.Errorf("jsonrow: unknown type name %q in type string", tok.text)
	}
	if err != nil {
		return nil, err
	}

	return p.parseNullability(t)
}

// parseNullability consumes an optional NULL / NOT NULL suffix.
// Types are nullable by default.
func (p *typeParser) parseNullability(t *Type) (*Type, error) {
	if p.peek().kind == ttIdent {
		switch strings.ToUpper(p.peek().text) {
		case "NULL":
			p.advance()
			return t.AsNullable(), nil
		case "NOT":
			p.advance()
			next := p.peek()
			if next.kind != ttIdent || !strings.EqualFold(next.text, "NULL") {
				return nil, fmt.Errorf("jsonrow: expected NULL after NOT in type string, got %q", next.text)
			}
			p.advance()
			return t, nil
		}
	}
	return t.AsNullable(), nil
}

func (p *typeParser) parseDecimal() (*Type, error) {
	if _, err := p.expect(ttLParen, "'('"); err != nil {
		return nil, err
	}
	precTok, err := p.expect(ttInt, "decimal precision")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ttComma, "','"); err != nil {
		return nil, err
	}
	scaleTok, err := p.expect(ttInt, "decimal scale")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ttRParen, "')'"); err != nil {
		return nil, err
	}
	prec, _ := strconv.Atoi(precTok.text)
	scale, _ := strconv.Atoi(scaleTok.text)
	return DecimalType(prec, scale), nil
}

func (p *typeParser) parseArray() (*Type, error) {
	if _, err := p.expect(ttLAngle, "'<'"); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ttRAngle, "'>'"); err != nil {
		return nil, err
	}
	return ArrayOf(elem), nil
}

func (p *typeParser) parseMap() (*Type, error) {
	if _, err := p.expect(ttLAngle, "'<'"); err != nil {
		return nil, err
	}
	key, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ttComma, "','"); err != nil {
		return nil, err
	}
	val, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ttRAngle, "'>'"); err != nil {
		return nil, err
	}
	return MapOf(key, val), nil
}

func (p *typeParser) parseRow() (*Type, error) {
	if _, err := p.expect(ttLAngle, "'<'"); err != nil {
		return nil, err
	}
	var fields []RowField
	for {
		nameTok, err := p.expect(ttIdent, "field name")
		if err != nil {
			return nil, err
		}
		ft, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field(nameTok.text, ft))
		if p.match(ttComma) {
			continue
		}
		break
	}
	if _, err := p.expect(ttRAngle, "'>'"); err != nil {
		return nil, err
	}
	return RowOf(fields...), nil
}
