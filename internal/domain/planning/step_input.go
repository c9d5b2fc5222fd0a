package planning

import (
	"fmt"
	"strings"
)

// StepInput is the flat step descriptor every scheduling call site
// consumes: direct creation, the AI tool dispatcher, append/replace
// mutations, and marketplace snapshots (which persist a jsonb array of
// these). Order is the logical day-slot.
type StepInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Order            int      `json:"order"`
	Priority         string   `json:"priority,omitempty"`
	EstimatedMinutes int      `json:"estimated_minutes,omitempty"`
	Resources        []string `json:"resources,omitempty"`
}

// ValidateSteps rejects malformed descriptors before they reach the
// bucketing algorithm, which assumes well-formed input.
func ValidateSteps(steps []StepInput) error {
	for i, s := range steps {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("step %d: title is required", i)
		}
		if s.Order < 0 {
			return fmt.Errorf("step %d: order must be non-negative", i)
		}
		switch s.Priority {
		case "", PriorityLow, PriorityMedium, PriorityHigh:
		default:
			return fmt.Errorf("step %d: unknown priority %q", i, s.Priority)
		}
	}
	return nil
}
