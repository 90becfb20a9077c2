package eval

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/xeipuuv/gojsonschema"

	"github.com/chemeval/chemeval/tools"
)

// FuncDescription is the schema descriptor for one available tool, used to
// validate observed argument shapes.
type FuncDescription struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// DescribeTools builds schema descriptors from a tool list.
func DescribeTools(toolList []tools.Tool) []FuncDescription {
	descs := make([]FuncDescription, 0, len(toolList))
	for _, t := range toolList {
		if t == nil {
			continue
		}
		desc := FuncDescription{Name: t.Name(), Description: t.Description()}
		if s := t.Schema(); s != nil {
			params := map[string]interface{}{"type": "object"}
			if s.Type != "" {
				params["type"] = s.Type
			}
			if len(s.Properties) > 0 {
				params["properties"] = s.Properties
			}
			if len(s.Required) > 0 {
				params["required"] = s.Required
			}
			desc.Parameters = params
		}
		descs = append(descs, desc)
	}
	return descs
}

// CallDiff is the per-position diagnostic for one expected call.
type CallDiff struct {
	Index        int      `json:"index"`
	ExpectedName string   `json:"expected_name"`
	ObservedName string   `json:"observed_name,omitempty"`
	Missing      bool     `json:"missing,omitempty"`
	NameMatch    bool     `json:"name_match"`
	ArgsMatch    bool     `json:"args_match"`
	ArgDiffs     []string `json:"arg_diffs,omitempty"`
	SchemaErrors []string `json:"schema_errors,omitempty"`
}

// Accurate reports whether this position scored as a match.
func (d CallDiff) Accurate() bool { return !d.Missing && d.NameMatch && d.ArgsMatch }

// Result is the outcome of comparing one observed sequence against one
// expected sequence.
type Result struct {
	NToolCalls    int        `json:"n_toolcalls"`
	AccNToolCalls int        `json:"acc_n_toolcalls"`
	Details       []CallDiff `json:"details"`

	// SubsequenceMatches counts expected calls found anywhere later in the
	// observed sequence in relative order, ignoring interleaved extras. It
	// is a diagnostic for reordered-but-present tool use and never affects
	// the score.
	SubsequenceMatches int `json:"subsequence_matches"`

	// ExtraObserved is the number of observed calls beyond the expected
	// length. They carry no credit or penalty.
	ExtraObserved int `json:"extra_observed,omitempty"`
}

// Complete reports whether every expected call matched.
func (r Result) Complete() bool { return r.AccNToolCalls == r.NToolCalls }

// CheckWithOrder scores an observed tool-call sequence against the expected
// one. Matching is by index alignment: position i of observed is compared to
// position i of expected, so an otherwise-correct call in the wrong place is
// a miss. A position matches when the name matches and the arguments are
// structurally equal (key order ignored, values compared deeply). A missing
// or malformed call at a position scores inaccurate, never fatal.
//
// An empty expected sequence is vacuously complete: 0 of 0 calls matched.
func CheckWithOrder(funcDescriptions []FuncDescription, observed, expected []ToolCall) Result {
	result := Result{
		NToolCalls: len(expected),
		Details:    make([]CallDiff, 0, len(expected)),
	}
	if len(observed) > len(expected) {
		result.ExtraObserved = len(observed) - len(expected)
	}

	descByName := make(map[string]FuncDescription, len(funcDescriptions))
	for _, d := range funcDescriptions {
		descByName[d.Name] = d
	}

	for i, want := range expected {
		diff := CallDiff{Index: i, ExpectedName: want.Name}

		if i >= len(observed) {
			diff.Missing = true
			result.Details = append(result.Details, diff)
			continue
		}

		got := observed[i]
		diff.ObservedName = got.Name
		diff.NameMatch = got.Name == want.Name
		diff.ArgsMatch = argumentsEqual(got.Arguments, want.Arguments)
		if !diff.ArgsMatch {
			diff.ArgDiffs = diffArguments(got.Arguments, want.Arguments)
		}
		if desc, ok := descByName[got.Name]; ok && desc.Parameters != nil {
			diff.SchemaErrors = validateAgainstSchema(desc.Parameters, got.Arguments)
		}

		if diff.Accurate() {
			result.AccNToolCalls++
		}
		result.Details = append(result.Details, diff)
	}

	result.SubsequenceMatches = subsequenceMatches(observed, expected)
	return result
}

// argumentsEqual compares two argument mappings structurally. Both sides are
// normalized through a JSON round trip so that numeric types and nested
// container types compare by value. nil (a malformed observed payload) is
// never equal to a present mapping.
func argumentsEqual(got, want map[string]interface{}) bool {
	if got == nil || want == nil {
		return got == nil && want == nil
	}
	return reflect.DeepEqual(normalizeValue(got), normalizeValue(want))
}

func normalizeValue(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// diffArguments reports top-level key differences for diagnostics.
func diffArguments(got, want map[string]interface{}) []string {
	var diffs []string
	if got == nil {
		return []string{"observed arguments malformed or absent"}
	}

	wantCall := ToolCall{Arguments: want}
	gotCall := ToolCall{Arguments: got}

	for _, k := range wantCall.SortedKeys() {
		gv, ok := got[k]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("missing key %q", k))
			continue
		}
		if !reflect.DeepEqual(normalizeValue(gv), normalizeValue(want[k])) {
			diffs = append(diffs, fmt.Sprintf("value mismatch at %q: got %s, want %s",
				k, compactJSON(gv), compactJSON(want[k])))
		}
	}
	for _, k := range gotCall.SortedKeys() {
		if _, ok := want[k]; !ok {
			diffs = append(diffs, fmt.Sprintf("extra key %q", k))
		}
	}
	return diffs
}

func compactJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// validateAgainstSchema checks the observed arguments against the tool's
// parameter schema. Validation problems are diagnostic only.
func validateAgainstSchema(params map[string]interface{}, args map[string]interface{}) []string {
	if args == nil {
		return []string{"arguments not parseable"}
	}
	res, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(params),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return []string{fmt.Sprintf("schema validation failed: %v", err)}
	}
	if res.Valid() {
		return nil
	}
	errs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		errs = append(errs, e.String())
	}
	return errs
}

// subsequenceMatches counts how many expected calls appear in the observed
// sequence in relative order, allowing interleaved extra calls.
func subsequenceMatches(observed, expected []ToolCall) int {
	matched := 0
	oi := 0
	for _, want := range expected {
		for oi < len(observed) {
			got := observed[oi]
			oi++
			if got.Name == want.Name && argumentsEqual(got.Arguments, want.Arguments) {
				matched++
				break
			}
		}
	}
	return matched
}

// Summary aggregates per-case results into an overall accuracy figure. A
// case counts as accurate only when every expected call matched.
type Summary struct {
	Total        int     `json:"total"`
	FullyMatched int     `json:"fully_matched"`
	Accuracy     float64 `json:"accuracy"`
}

// Summarize computes the aggregate over per-case results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Complete() {
			s.FullyMatched++
		}
	}
	if s.Total > 0 {
		s.Accuracy = float64(s.FullyMatched) / float64(s.Total) * 100
	}
	return s
}
