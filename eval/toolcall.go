// Package eval scores observed tool-call sequences against ground truth.
package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/chemeval/chemeval/schema"
)

// ToolCall is one recorded invocation, either observed from an LLM run or
// expected from ground truth. On the wire it is a single-key object mapping
// the tool name to its arguments:
//
//	{"molecule_name_to_smiles": {"name": "water"}}
type ToolCall struct {
	Name      string
	Arguments map[string]interface{}
}

// MarshalJSON encodes the call in single-key-object form.
func (c ToolCall) MarshalJSON() ([]byte, error) {
	args := c.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}
	return json.Marshal(map[string]map[string]interface{}{c.Name: args})
}

// UnmarshalJSON decodes the single-key-object form. Objects with more than
// one key are rejected.
func (c *ToolCall) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tool call must be a {name: arguments} object: %w", err)
	}
	if len(raw) != 1 {
		return fmt.Errorf("tool call object must have exactly one key, got %d", len(raw))
	}
	for name, args := range raw {
		c.Name = name
		c.Arguments = args
	}
	return nil
}

// FromSchemaCalls converts recorded wire calls into comparable calls.
// Calls whose argument payload cannot be parsed get nil Arguments, which
// never compare equal to any expected arguments.
func FromSchemaCalls(calls []schema.ToolCall) []ToolCall {
	out := make([]ToolCall, 0, len(calls))
	for _, call := range calls {
		tc := ToolCall{Name: call.Name}
		if len(call.Args) > 0 {
			var args map[string]interface{}
			if err := json.Unmarshal(call.Args, &args); err == nil {
				tc.Arguments = args
			}
		} else {
			tc.Arguments = map[string]interface{}{}
		}
		out = append(out, tc)
	}
	return out
}

// Answer is the ground-truth expectation for a query.
type Answer struct {
	ToolCalls []ToolCall `json:"tool_calls"`
}

// Case pairs a query with its expected tool-call sequence.
type Case struct {
	Query  string `json:"query"`
	Answer Answer `json:"answer"`
}

// LoadCases reads a ground-truth file: a JSON array of cases.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ground truth: %w", err)
	}
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse ground truth %s: %w", path, err)
	}
	return cases, nil
}

// SortedKeys returns the argument keys in sorted order, for stable diffs.
func (c ToolCall) SortedKeys() []string {
	keys := make([]string, 0, len(c.Arguments))
	for k := range c.Arguments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
