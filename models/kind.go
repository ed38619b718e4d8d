package models

import (
	"fmt"
	"strings"
)

// Kind identifies a class of platform resource.
type Kind string

const (
	KindUser         Kind = "user"
	KindCourse       Kind = "course"
	KindLearningPlan Kind = "learning_plan"
)

// ParseKind parses a human-supplied kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "users":
		return KindUser, nil
	case "course", "courses":
		return KindCourse, nil
	case "learning_plan", "learning-plan", "learningplan", "learning plan", "lp", "plan":
		return KindLearningPlan, nil
	}
	return "", fmt.Errorf("unknown resource kind %q", s)
}

// Label returns the human-readable name used in report strings.
func (k Kind) Label() string {
	switch k {
	case KindLearningPlan:
		return "learning plan"
	case KindUser, KindCourse:
		return string(k)
	}
	return "resource"
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindUser, KindCourse, KindLearningPlan:
		return true
	}
	return false
}

// Enrollable reports whether users can be enrolled into resources of this kind.
func (k Kind) Enrollable() bool {
	return k == KindCourse || k == KindLearningPlan
}
