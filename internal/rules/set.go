package rules

import (
	"encoding/json"
	"fmt"

	"github.com/kodjo-amani/dossier-check/internal/common"
)

// Document requirement levels an action rule can assign.
const (
	ActionRequire  = "require"
	ActionOptional = "optional"
	ActionHide     = "hide"
)

// Requirement is a document's standing once a rule set has been applied.
type Requirement string

const (
	Required Requirement = "required"
	Optional Requirement = "optional"
	Hidden   Requirement = "hidden"
)

// Rule is one named workflow rule. A rule either surfaces a condition match
// (When only) or sets a document requirement (Document and Action, with an
// optional When that gates the action; a nil When always applies).
type Rule struct {
	ID          string     `json:"id"`
	Description string     `json:"description,omitempty"`
	Document    string     `json:"document,omitempty"`
	Action      string     `json:"action,omitempty"`
	When        *Condition `json:"when,omitempty"`
}

// Set is a loaded rule set.
type Set struct {
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}

// setSchema shapes a rule-set document before it is trusted.
var setSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "rules"},
	"properties": map[string]any{
		"name": map[string]any{"type": "string", "minLength": 1},
		"rules": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id"},
				"properties": map[string]any{
					"id":          map[string]any{"type": "string", "minLength": 1},
					"description": map[string]any{"type": "string"},
					"document":    map[string]any{"type": "string"},
					"action": map[string]any{
						"enum": []any{ActionRequire, ActionOptional, ActionHide},
					},
					"when": map[string]any{"$ref": "#/$defs/condition"},
				},
			},
		},
	},
	"$defs": map[string]any{
		"condition": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"all": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/$defs/condition"},
				},
				"any": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/$defs/condition"},
				},
				"fields_differ": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 2,
					"maxItems": 2,
				},
				"field": map[string]any{"type": "string"},
				"op": map[string]any{
					"enum": []any{OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIn, OpNotIn},
				},
				"value": map[string]any{},
			},
		},
	},
}

// LoadSet parses and validates a JSON rule set.
func LoadSet(data []byte) (*Set, error) {
	if err := common.ValidateJSONAgainstSchema(setSchema, data); err != nil {
		return nil, fmt.Errorf("rule set schema: %w", err)
	}
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode rule set: %w", err)
	}
	for _, r := range s.Rules {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.ID, err)
		}
	}
	return &s, nil
}

func (r Rule) validate() error {
	if (r.Document == "") != (r.Action == "") {
		return fmt.Errorf("document and action go together")
	}
	if r.When == nil {
		if r.Action == "" {
			return fmt.Errorf("condition rule needs when")
		}
		return nil
	}
	return r.When.Validate()
}

// Matching returns the condition rules that hold for ctx, in set order.
// Document-action rules never match; they only shape Requirements.
func (s *Set) Matching(ctx map[string]any) []Rule {
	var out []Rule
	for _, r := range s.Rules {
		if r.Action == "" && Evaluate(r.When, ctx) {
			out = append(out, r)
		}
	}
	return out
}

// Requirements applies the document-action rules to ctx and returns the
// requirement each named document ends up with. Rules apply in set order, so
// a later rule overrides an earlier one for the same document.
func (s *Set) Requirements(ctx map[string]any) map[string]Requirement {
	out := map[string]Requirement{}
	for _, r := range s.Rules {
		if r.Action == "" {
			continue
		}
		if r.When != nil && !Evaluate(r.When, ctx) {
			continue
		}
		switch r.Action {
		case ActionRequire:
			out[r.Document] = Required
		case ActionOptional:
			out[r.Document] = Optional
		case ActionHide:
			out[r.Document] = Hidden
		}
	}
	return out
}
