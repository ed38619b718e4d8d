package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/vaintrub/docebo-go/models"
)

// ErrEnrollmentRejected indicates the platform accepted the call but refused
// every enrollment change in it (e.g. the user is already enrolled).
var ErrEnrollmentRejected = errors.New("enrollment rejected")

// EnrollUsersInCourse enrolls userIDs into courseID.
func (a *Adapter) EnrollUsersInCourse(ctx context.Context, courseID string, userIDs []string, opts models.EnrollmentOptions) (*models.EnrollmentResult, error) {
	if courseID == "" {
		return nil, &ValidationError{Field: "courseID", Message: "cannot be empty"}
	}
	if err := validateUserIDs(userIDs); err != nil {
		return nil, err
	}
	if err := ValidateEnrollmentOptions(opts); err != nil {
		return nil, err
	}

	level := opts.Level
	if level == "" {
		level = models.LevelLearner
	}
	return a.enrollmentCall(ctx, http.MethodPost, pathCourseEnrollments, models.CourseEnrollment{
		CourseIDs:      []string{courseID},
		UserIDs:        userIDs,
		Level:          level.Code(),
		AssignmentType: string(opts.AssignmentType),
		ValidityStart:  models.NewPlatformTime(opts.ValidityStart),
		ValidityEnd:    models.NewPlatformTime(opts.ValidityEnd),
	})
}

// UnenrollUsersFromCourse removes userIDs from courseID.
func (a *Adapter) UnenrollUsersFromCourse(ctx context.Context, courseID string, userIDs []string) (*models.EnrollmentResult, error) {
	if courseID == "" {
		return nil, &ValidationError{Field: "courseID", Message: "cannot be empty"}
	}
	if err := validateUserIDs(userIDs); err != nil {
		return nil, err
	}
	return a.enrollmentCall(ctx, http.MethodDelete, pathCourseEnrollments, models.CourseUnenrollment{
		CourseIDs: []string{courseID},
		UserIDs:   userIDs,
	})
}

// EnrollUsersInLearningPlan enrolls userIDs into planID.
// Learning plans have no enrollment level, so opts.Level is ignored.
func (a *Adapter) EnrollUsersInLearningPlan(ctx context.Context, planID string, userIDs []string, opts models.EnrollmentOptions) (*models.EnrollmentResult, error) {
	if planID == "" {
		return nil, &ValidationError{Field: "planID", Message: "cannot be empty"}
	}
	if err := validateUserIDs(userIDs); err != nil {
		return nil, err
	}
	if err := ValidateEnrollmentOptions(opts); err != nil {
		return nil, err
	}
	return a.enrollmentCall(ctx, http.MethodPost, pathLearningPlanEnrollments, models.LearningPlanEnrollment{
		LearningPlanIDs: []string{planID},
		UserIDs:         userIDs,
		AssignmentType:  string(opts.AssignmentType),
		ValidityStart:   models.NewPlatformTime(opts.ValidityStart),
		ValidityEnd:     models.NewPlatformTime(opts.ValidityEnd),
	})
}

// UnenrollUsersFromLearningPlan removes userIDs from planID.
func (a *Adapter) UnenrollUsersFromLearningPlan(ctx context.Context, planID string, userIDs []string) (*models.EnrollmentResult, error) {
	if planID == "" {
		return nil, &ValidationError{Field: "planID", Message: "cannot be empty"}
	}
	if err := validateUserIDs(userIDs); err != nil {
		return nil, err
	}
	return a.enrollmentCall(ctx, http.MethodDelete, pathLearningPlanEnrollments, models.LearningPlanUnenrollment{
		LearningPlanIDs: []string{planID},
		UserIDs:         userIDs,
	})
}

// Enroll enrolls a single user into a course or learning plan.
func (a *Adapter) Enroll(ctx context.Context, kind models.Kind, resourceID, userID string, opts models.EnrollmentOptions) error {
	var err error
	switch kind {
	case models.KindCourse:
		_, err = a.EnrollUsersInCourse(ctx, resourceID, []string{userID}, opts)
	case models.KindLearningPlan:
		_, err = a.EnrollUsersInLearningPlan(ctx, resourceID, []string{userID}, opts)
	default:
		err = &ValidationError{Field: "kind", Message: fmt.Sprintf("cannot enroll into %s", kind.Label())}
	}
	return err
}

// Unenroll removes a single user from a course or learning plan.
func (a *Adapter) Unenroll(ctx context.Context, kind models.Kind, resourceID, userID string) error {
	var err error
	switch kind {
	case models.KindCourse:
		_, err = a.UnenrollUsersFromCourse(ctx, resourceID, []string{userID})
	case models.KindLearningPlan:
		_, err = a.UnenrollUsersFromLearningPlan(ctx, resourceID, []string{userID})
	default:
		err = &ValidationError{Field: "kind", Message: fmt.Sprintf("cannot unenroll from %s", kind.Label())}
	}
	return err
}

// ValidateEnrollmentOptions checks levels, assignment types and the validity window.
func ValidateEnrollmentOptions(opts models.EnrollmentOptions) error {
	if opts.Level != "" && opts.Level.Code() == "" {
		return &ValidationError{Field: "level", Message: fmt.Sprintf("unknown enrollment level %q", opts.Level)}
	}
	if opts.AssignmentType != "" && !opts.AssignmentType.Valid() {
		return &ValidationError{Field: "assignmentType", Message: fmt.Sprintf("unknown assignment type %q", opts.AssignmentType)}
	}
	if opts.ValidityStart != nil && opts.ValidityEnd != nil && opts.ValidityEnd.Before(*opts.ValidityStart) {
		return &ValidationError{Field: "validityEnd", Message: "must not be before validityStart"}
	}
	return nil
}

func validateUserIDs(userIDs []string) error {
	if len(userIDs) == 0 {
		return &ValidationError{Field: "userIDs", Message: "cannot be empty"}
	}
	for _, id := range userIDs {
		if id == "" {
			return &ValidationError{Field: "userIDs", Message: "cannot contain empty ids"}
		}
	}
	return nil
}

func (a *Adapter) enrollmentCall(ctx context.Context, method, path string, body interface{}) (*models.EnrollmentResult, error) {
	var env envelope
	if err := a.doJSON(ctx, requestConfig{
		method: method,
		path:   path,
		body:   body,
	}, &env); err != nil {
		return nil, err
	}

	result := &models.EnrollmentResult{}
	if len(env.Data) > 0 {
		// Older surfaces answer with a bare boolean or an id list; only the
		// object form carries per-user errors.
		_ = json.Unmarshal(env.Data, result)
	}
	if len(result.Errors) > 0 && len(result.Enrolled) == 0 {
		return result, fmt.Errorf("%w: %s", ErrEnrollmentRejected, describeEnrollmentErrors(result.Errors))
	}
	return result, nil
}

func describeEnrollmentErrors(errs models.Record) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, strings.ReplaceAll(k, "_", " "))
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
