// Package rules evaluates declarative workflow conditions against a flat
// dossier context. Conditions come from operator-editable JSON, so
// evaluation must never panic: unknown or missing context fields behave as
// null.
package rules

import (
	"fmt"
	"strconv"
)

// Supported leaf operators.
const (
	OpEq    = "=="
	OpNeq   = "!="
	OpGt    = ">"
	OpGte   = ">="
	OpLt    = "<"
	OpLte   = "<="
	OpIn    = "IN"
	OpNotIn = "NOT_IN"
)

// Condition is one node of a rule tree. Exactly one of All, Any,
// FieldsDiffer or the Field/Op pair must be set.
type Condition struct {
	All          []*Condition `json:"all,omitempty"`
	Any          []*Condition `json:"any,omitempty"`
	FieldsDiffer []string     `json:"fields_differ,omitempty"`

	Field string `json:"field,omitempty"`
	Op    string `json:"op,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Validate rejects trees that would silently evaluate to nonsense.
func (c *Condition) Validate() error {
	if c == nil {
		return fmt.Errorf("nil condition")
	}
	kinds := 0
	if len(c.All) > 0 {
		kinds++
	}
	if len(c.Any) > 0 {
		kinds++
	}
	if len(c.FieldsDiffer) > 0 {
		kinds++
	}
	if c.Field != "" {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("condition must have exactly one of all, any, fields_differ or field, got %d", kinds)
	}

	switch {
	case len(c.All) > 0:
		for _, child := range c.All {
			if err := child.Validate(); err != nil {
				return err
			}
		}
	case len(c.Any) > 0:
		for _, child := range c.Any {
			if err := child.Validate(); err != nil {
				return err
			}
		}
	case len(c.FieldsDiffer) > 0:
		if len(c.FieldsDiffer) != 2 {
			return fmt.Errorf("fields_differ needs exactly two fields, got %d", len(c.FieldsDiffer))
		}
	default:
		switch c.Op {
		case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		case OpIn, OpNotIn:
			if _, ok := c.Value.([]any); !ok {
				return fmt.Errorf("operator %s on %q needs a list value", c.Op, c.Field)
			}
		default:
			return fmt.Errorf("unknown operator %q on field %q", c.Op, c.Field)
		}
	}
	return nil
}

// Evaluate walks the condition tree against ctx. Fields absent from ctx
// evaluate as null: equal only to null, never ordered, never a list member.
func Evaluate(c *Condition, ctx map[string]any) bool {
	if c == nil {
		return false
	}
	switch {
	case len(c.All) > 0:
		for _, child := range c.All {
			if !Evaluate(child, ctx) {
				return false
			}
		}
		return true
	case len(c.Any) > 0:
		for _, child := range c.Any {
			if Evaluate(child, ctx) {
				return true
			}
		}
		return false
	case len(c.FieldsDiffer) == 2:
		a, aok := ctx[c.FieldsDiffer[0]]
		b, bok := ctx[c.FieldsDiffer[1]]
		if !aok || !bok {
			return false
		}
		return !valuesEqual(a, b)
	case c.Field != "":
		return evaluateLeaf(c, ctx)
	}
	return false
}

func evaluateLeaf(c *Condition, ctx map[string]any) bool {
	v, ok := ctx[c.Field]
	if !ok {
		v = nil
	}

	switch c.Op {
	case OpEq:
		return valuesEqual(v, c.Value)
	case OpNeq:
		return !valuesEqual(v, c.Value)
	case OpGt, OpGte, OpLt, OpLte:
		return compareOrdered(c.Op, v, c.Value)
	case OpIn, OpNotIn:
		list, ok := c.Value.([]any)
		if !ok {
			return false
		}
		found := false
		for _, item := range list {
			if valuesEqual(v, item) {
				found = true
				break
			}
		}
		if c.Op == OpIn {
			return found
		}
		return !found
	}
	return false
}

// valuesEqual compares numerically when both sides parse as numbers and by
// string rendering otherwise. null equals only null.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if na, aok := toFloat(a); aok {
		if nb, bok := toFloat(b); bok {
			return na == nb
		}
	}
	return render(a) == render(b)
}

func compareOrdered(op string, a, b any) bool {
	na, aok := toFloat(a)
	nb, bok := toFloat(b)
	if aok && bok {
		switch op {
		case OpGt:
			return na > nb
		case OpGte:
			return na >= nb
		case OpLt:
			return na < nb
		case OpLte:
			return na <= nb
		}
		return false
	}
	if a == nil || b == nil {
		return false
	}
	sa, sb := render(a), render(b)
	switch op {
	case OpGt:
		return sa > sb
	case OpGte:
		return sa >= sb
	case OpLt:
		return sa < sb
	case OpLte:
		return sa <= sb
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

func render(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
