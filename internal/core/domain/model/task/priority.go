package task

import (
	"fmt"
	"strings"

	"deliverytasks/internal/pkg/errs"
)

// Priority orders tasks for delivery agents; higher values are served first.
type Priority int

const (
	Low Priority = iota
	Medium
	High
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		Low:    "low",
		Medium: "medium",
		High:   "high",
	}
}

// ParsePriority accepts "low", "medium" or "high".
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range getPriorityStrings() {
		if name == s {
			return p, nil
		}
	}
	return Low, errs.NewValueIsInvalidErrorWithCause(
		"priority",
		fmt.Errorf("%q is not one of low, medium, high", s),
	)
}

func (p Priority) Validate() error {
	if _, ok := getPriorityStrings()[p]; !ok {
		return errs.NewValueIsOutOfRangeError("priority", int(p), int(Low), int(High))
	}
	return nil
}

func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "unknown"
}
