package sheets

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Operator is a filter comparison.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpIn           Operator = "in"
	OpNotIn        Operator = "not in"
	OpContains     Operator = "contains"
	OpNotContains  Operator = "not contains"
	OpIsNull       Operator = "is_null"
	OpNotNull      Operator = "not_null"
)

// Operators lists every supported operator.
var Operators = []Operator{
	OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual,
	OpIn, OpNotIn, OpContains, OpNotContains, OpIsNull, OpNotNull,
}

func operatorNames() []string {
	names := make([]string, len(Operators))
	for i, op := range Operators {
		names[i] = string(op)
	}
	return names
}

// ParseOperator normalizes case and inner whitespace ("NOT  IN" -> "not in")
// and rejects anything that is not a supported operator.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.Join(strings.Fields(s), " ")))
	for _, known := range Operators {
		if op == known {
			return op, nil
		}
	}
	return "", &ConfigurationError{Kind: "operator", Name: s, Available: operatorNames()}
}

// NeedsOperand reports whether op compares against a value.
func (op Operator) NeedsOperand() bool {
	return op != OpIsNull && op != OpNotNull
}

// IsList reports whether op takes a list operand.
func (op Operator) IsList() bool {
	return op == OpIn || op == OpNotIn
}

// Clause is a single filter predicate. Values is the operand of in / not in;
// Value is used by every other operator that takes one.
type Clause struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value,omitempty"`
	Values   []string `json:"values,omitempty"`
}

// valueKind orders coercion priority: dates beat numbers beat strings.
type valueKind int

const (
	kindDate valueKind = iota
	kindNumber
	kindString
	kindNull
)

type typedValue struct {
	kind valueKind
	date time.Time
	num  float64
	raw  string
}

var groupedNumber = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// parseNumber accepts plain decimals and comma-grouped thousands. NaN,
// infinities and hex forms such as "0x1A" are text, not numbers.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if unsigned := strings.TrimLeft(s, "+-"); len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X') {
		return 0, false
	}
	if groupedNumber.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Evaluator evaluates clauses against raw cell text.
type Evaluator struct {
	dates *DateNormalizer
}

// NewEvaluator returns an Evaluator using dates for date coercion. A nil
// normalizer means the default layouts.
func NewEvaluator(dates *DateNormalizer) *Evaluator {
	if dates == nil {
		dates = NewDateNormalizer()
	}
	return &Evaluator{dates: dates}
}

// Dates returns the normalizer in use.
func (e *Evaluator) Dates() *DateNormalizer {
	return e.dates
}

func (e *Evaluator) classify(raw string) typedValue {
	if strings.TrimSpace(raw) == "" {
		return typedValue{kind: kindNull, raw: raw}
	}
	if t, ok := e.dates.Parse(raw); ok {
		return typedValue{kind: kindDate, date: t, raw: raw}
	}
	if f, ok := parseNumber(raw); ok {
		return typedValue{kind: kindNumber, num: f, raw: raw}
	}
	return typedValue{kind: kindString, raw: raw}
}

// compareTyped compares two values that share a coercible kind. ok is false
// when they do not.
func (e *Evaluator) compareTyped(a, b string) (cmp int, ok bool) {
	if da, okA := e.dates.Parse(a); okA {
		if db, okB := e.dates.Parse(b); okB {
			return da.Compare(db), true
		}
	}
	na, okA := parseNumber(a)
	nb, okB := parseNumber(b)
	if okA && okB {
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func (e *Evaluator) equal(cell, operand string) bool {
	if cmp, ok := e.compareTyped(cell, operand); ok {
		return cmp == 0
	}
	return cell == operand
}

// Evaluate applies clause to one cell. Ordering comparisons against values
// that cannot be coerced are false, not errors. Only an unknown operator
// fails.
func (e *Evaluator) Evaluate(cell string, clause Clause) (bool, error) {
	switch clause.Operator {
	case OpEqual:
		return e.equal(cell, clause.Value), nil
	case OpNotEqual:
		return !e.equal(cell, clause.Value), nil
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		cmp, ok := e.compareTyped(cell, clause.Value)
		if !ok {
			return false, nil
		}
		switch clause.Operator {
		case OpGreater:
			return cmp > 0, nil
		case OpLess:
			return cmp < 0, nil
		case OpGreaterEqual:
			return cmp >= 0, nil
		default:
			return cmp <= 0, nil
		}
	case OpIn, OpNotIn:
		found := false
		for _, v := range clause.Values {
			if e.equal(cell, v) {
				found = true
				break
			}
		}
		return found == (clause.Operator == OpIn), nil
	case OpContains:
		return strings.Contains(cell, clause.Value), nil
	case OpNotContains:
		return !strings.Contains(cell, clause.Value), nil
	case OpIsNull:
		return strings.TrimSpace(cell) == "", nil
	case OpNotNull:
		return strings.TrimSpace(cell) != "", nil
	default:
		return false, &ConfigurationError{Kind: "operator", Name: string(clause.Operator), Available: operatorNames()}
	}
}
