// Package client provides a self-contained client for the Docebo LMS API.
package client

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/vaintrub/docebo-go/models"
)

// Client defines the interface for interacting with the platform API.
type Client interface {
	// Health
	Ping(ctx context.Context) error

	// Gateway
	Call(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error)

	// Records (GET /manage/v1/user, /learn/v1/courses, /learningplan/v1/learningplans)
	Get(ctx context.Context, kind models.Kind, id string) (models.Record, error)
	Search(ctx context.Context, kind models.Kind, text string, pageSize int) ([]models.Record, error)
	ListPage(ctx context.Context, kind models.Kind, searchText string, page, pageSize int) (PageResult[models.Record], error)
	RecordIter(kind models.Kind, searchText string, pageSize int) *Iterator[models.Record]

	// Users
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SearchUsers(ctx context.Context, text string, pageSize int) ([]*models.User, error)
	ListUsersIter(pageSize int) *Iterator[*models.User]

	// Courses
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	SearchCourses(ctx context.Context, text string, pageSize int) ([]*models.Course, error)
	ListCoursesIter(pageSize int) *Iterator[*models.Course]

	// Learning plans
	GetLearningPlan(ctx context.Context, planID string) (*models.LearningPlan, error)
	SearchLearningPlans(ctx context.Context, text string, pageSize int) ([]*models.LearningPlan, error)
	ListLearningPlansIter(pageSize int) *Iterator[*models.LearningPlan]

	// Enrollments (POST/DELETE /learn/v1/enrollments, /learningplan/v1/learningplans/enrollments)
	EnrollUsersInCourse(ctx context.Context, courseID string, userIDs []string, opts models.EnrollmentOptions) (*models.EnrollmentResult, error)
	UnenrollUsersFromCourse(ctx context.Context, courseID string, userIDs []string) (*models.EnrollmentResult, error)
	EnrollUsersInLearningPlan(ctx context.Context, planID string, userIDs []string, opts models.EnrollmentOptions) (*models.EnrollmentResult, error)
	UnenrollUsersFromLearningPlan(ctx context.Context, planID string, userIDs []string) (*models.EnrollmentResult, error)
	Enroll(ctx context.Context, kind models.Kind, resourceID, userID string, opts models.EnrollmentOptions) error
	Unenroll(ctx context.Context, kind models.Kind, resourceID, userID string) error
}

var _ Client = (*Adapter)(nil)
