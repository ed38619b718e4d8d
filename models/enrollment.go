package models

import "time"

// EnrollmentLevel is the role a user is enrolled with.
type EnrollmentLevel string

const (
	LevelLearner    EnrollmentLevel = "learner"
	LevelTutor      EnrollmentLevel = "tutor"
	LevelInstructor EnrollmentLevel = "instructor"
)

// Code returns the platform's numeric level code, or "" for unknown levels.
func (l EnrollmentLevel) Code() string {
	switch l {
	case LevelLearner:
		return "3"
	case LevelTutor:
		return "4"
	case LevelInstructor:
		return "6"
	}
	return ""
}

// AssignmentType classifies how an enrollment was assigned.
type AssignmentType string

const (
	AssignmentMandatory   AssignmentType = "mandatory"
	AssignmentRequired    AssignmentType = "required"
	AssignmentRecommended AssignmentType = "recommended"
	AssignmentOptional    AssignmentType = "optional"
	AssignmentNone        AssignmentType = "none"
)

// Valid reports whether a is a known assignment type.
func (a AssignmentType) Valid() bool {
	switch a {
	case AssignmentMandatory, AssignmentRequired, AssignmentRecommended, AssignmentOptional, AssignmentNone:
		return true
	}
	return false
}

// EnrollmentOptions are optional parameters for enroll calls.
// Zero-valued fields are left out of the request.
type EnrollmentOptions struct {
	Level          EnrollmentLevel
	AssignmentType AssignmentType
	ValidityStart  *time.Time
	ValidityEnd    *time.Time
}

// CourseEnrollment is the request body for course enroll calls.
type CourseEnrollment struct {
	CourseIDs      []string      `json:"course_ids"`
	UserIDs        []string      `json:"user_ids"`
	Level          string        `json:"level,omitempty"`
	AssignmentType string        `json:"assignment_type,omitempty"`
	ValidityStart  *PlatformTime `json:"date_begin_validity,omitempty"`
	ValidityEnd    *PlatformTime `json:"date_expire_validity,omitempty"`
}

// CourseUnenrollment is the request body for course unenroll calls.
type CourseUnenrollment struct {
	CourseIDs []string `json:"course_ids"`
	UserIDs   []string `json:"user_ids"`
}

// LearningPlanEnrollment is the request body for learning plan enroll calls.
type LearningPlanEnrollment struct {
	LearningPlanIDs []string      `json:"learningplan_ids"`
	UserIDs         []string      `json:"user_ids"`
	AssignmentType  string        `json:"assignment_type,omitempty"`
	ValidityStart   *PlatformTime `json:"date_begin_validity,omitempty"`
	ValidityEnd     *PlatformTime `json:"date_expire_validity,omitempty"`
}

// LearningPlanUnenrollment is the request body for learning plan unenroll calls.
type LearningPlanUnenrollment struct {
	LearningPlanIDs []string `json:"learningplan_ids"`
	UserIDs         []string `json:"user_ids"`
}

// EnrollmentResult is the platform's summary of an enroll or unenroll call.
type EnrollmentResult struct {
	Enrolled []Record `json:"enrolled,omitempty"`
	Errors   Record   `json:"errors,omitempty"`
}
