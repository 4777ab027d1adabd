package jsonrow

import (
	"github.com/buger/jsonparser"
)

// nodeKind enumerates JSON node kinds.
type nodeKind uint8

const (
	nodeNull nodeKind = iota
	nodeBool
	nodeNumber
	nodeString
	nodeArray
	nodeObject
)

func (k nodeKind) String() string {
	switch k {
	case nodeNull:
		return "null"
	case nodeBool:
		return "boolean"
	case nodeNumber:
		return "number"
	case nodeString:
		return "string"
	case nodeArray:
		return "array"
	case nodeObject:
		return "object"
	default:
		return "unknown"
	}
}

// jsonNode is the parsed intermediate representation of one JSON
// value. Number lexemes are preserved verbatim so decimals keep their
// exact precision. Objects keep insertion order; duplicate keys
// resolve last-write-wins.
type jsonNode struct {
	kind    nodeKind
	boolVal bool
	lexeme  string // number: raw lexeme
	strVal  string
	elems   []*jsonNode
	fields  []objectField
}

type objectField struct {
	key string
	val *jsonNode
}

// get returns the field node for a key, or nil if absent.
func (n *jsonNode) get(key string) *jsonNode {
	for i := range n.fields {
		if n.fields[i].key == key {
			return n.fields[i].val
		}
	}
	return nil
}

// set inserts or overwrites a field, keeping first-seen order.
func (n *jsonNode) set(key string, val *jsonNode) {
	for i := range n.fields {
		if n.fields[i].key == key {
			n.fields[i].val = val
			return
		}
	}
	n.fields = append(n.fields, objectField{key: key, val: val})
}

var nullNode = &jsonNode{kind: nodeNull}

// parseTree parses one JSON document into a node tree.
func parseTree(data []byte) (*jsonNode, error) {
	raw, vt, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, &ParseError{Message: "malformed JSON document", Cause: err}
	}
	return buildNode(raw, vt)
}

func buildNode(raw []byte, vt jsonparser.ValueType) (*jsonNode, error) {
	switch vt {
	case jsonparser.Null:
		return nullNode, nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, &ParseError{Message: "malformed boolean literal", Cause: err}
		}
		return &jsonNode{kind: nodeBool, boolVal: b}, nil

	case jsonparser.Number:
		return &jsonNode{kind: nodeNumber, lexeme: string(raw)}, nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, &ParseError{Message: "malformed string literal", Cause: err}
		}
		return &jsonNode{kind: nodeString, strVal: s}, nil

	case jsonparser.Array:
		node := &jsonNode{kind: nodeArray}
		var elemErr error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
			if elemErr != nil {
				return
			}
			if err != nil {
				elemErr = &ParseError{Message: "malformed array element", Cause: err}
				return
			}
			elem, err := buildNode(value, dataType)
			if err != nil {
				elemErr = err
				return
			}
			node.elems = append(node.elems, elem)
		})
		if err != nil {
			return nil, &ParseError{Message: "malformed array", Cause: err}
		}
		if elemErr != nil {
			return nil, elemErr
		}
		return node, nil

	case jsonparser.Object:
		node := &jsonNode{kind: nodeObject}
		err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
			k, err := jsonparser.ParseString(key)
			if err != nil {
				return &ParseError{Message: "malformed object key", Cause: err}
			}
			child, err := buildNode(value, dataType)
			if err != nil {
				return err
			}
			node.set(k, child)
			return nil
		})
		if err != nil {
			if _, ok := err.(*ParseError); ok {
				return nil, err
			}
			return nil, &ParseError{Message: "malformed object", Cause: err}
		}
		return node, nil

	default:
		return nil, parseErrorf("unsupported JSON value type")
	}
}
