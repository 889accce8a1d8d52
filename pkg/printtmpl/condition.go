package printtmpl

import (
	"fmt"
	"strings"
)

type conditionOp int

const (
	opTruthy conditionOp = iota
	opNot
	opEqual
	opNotEqual
)

// condition is a parsed Condition test: "path", "!path", "path == literal"
// or "path != literal".
type condition struct {
	op      conditionOp
	path    string
	literal string
}

// parseCondition parses a test attribute. The path must be well formed; the
// literal may be quoted with single or double quotes.
func parseCondition(test string) (condition, error) {
	s := strings.TrimSpace(test)
	if s == "" {
		return condition{}, fmt.Errorf("empty test")
	}

	eq := strings.Index(s, "==")
	ne := strings.Index(s, "!=")
	switch {
	case eq >= 0 && (ne < 0 || eq < ne):
		return parseComparison(opEqual, s[:eq], s[eq+2:])
	case ne >= 0:
		return parseComparison(opNotEqual, s[:ne], s[ne+2:])
	}

	c := condition{op: opTruthy, path: s}
	if strings.HasPrefix(s, "!") {
		c.op = opNot
		c.path = strings.TrimSpace(s[1:])
	}
	if err := ValidatePath(c.path); err != nil {
		return condition{}, err
	}
	return c, nil
}

func parseComparison(op conditionOp, left, right string) (condition, error) {
	c := condition{op: op, path: strings.TrimSpace(left)}
	if err := ValidatePath(c.path); err != nil {
		return condition{}, err
	}

	lit := strings.TrimSpace(right)
	if len(lit) >= 2 && (lit[0] == '"' || lit[0] == '\'') && lit[len(lit)-1] == lit[0] {
		c.literal = lit[1 : len(lit)-1]
		return c, nil
	}
	if lit == "" {
		return condition{}, fmt.Errorf("missing value after comparison operator")
	}
	if strings.ContainsAny(lit, "\"' ") {
		return condition{}, fmt.Errorf("invalid comparison value %s", lit)
	}
	c.literal = lit
	return c, nil
}

// eval resolves the condition against scope. Undefined values are falsy and
// compare as the empty string.
func (c condition) eval(scope *Scope) bool {
	value, _ := scope.Resolve(c.path)
	switch c.op {
	case opNot:
		return !isTruthy(value)
	case opEqual:
		return FormatValue(value) == c.literal
	case opNotEqual:
		return FormatValue(value) != c.literal
	default:
		return isTruthy(value)
	}
}
