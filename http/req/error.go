package req

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xy-planning-network/trailhead"
)

// A ValidationError is a value that failed the rule set on its field.
// Fields tagged with MaskTag report trailhead.LogMaskVal instead of the value.
type ValidationError struct {
	Field string `json:"field"`
	Got   any    `json:"got"`
	Rule  string `json:"rule,omitempty"`
}

func (ve ValidationError) String() string {
	return fmt.Sprintf("field=%q rule=%q got=%q", ve.Field, ve.Rule, fmt.Sprint(ve.Got))
}

// ValidationErrors is every ValidationError found in one struct.
// It wraps trailhead.ErrNotValid.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, ve := range v {
		msgs[i] = ve.String()
	}

	return strings.Join(msgs, "\n")
}

// Fields lists the fields that failed, in order, without repeats.
func (v ValidationErrors) Fields() []string {
	seen := make(map[string]bool, len(v))
	fields := make([]string, 0, len(v))
	for _, ve := range v {
		if seen[ve.Field] {
			continue
		}

		seen[ve.Field] = true
		fields = append(fields, ve.Field)
	}

	return fields
}

func (v ValidationErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		E []ValidationError `json:"validationErrors,omitempty"`
	}{v})
}

func (ValidationErrors) Unwrap() error { return trailhead.ErrNotValid }
