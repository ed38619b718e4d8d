package bulk

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaintrub/docebo-go/client"
	"github.com/vaintrub/docebo-go/internal/platformtest"
	"github.com/vaintrub/docebo-go/models"
	"github.com/vaintrub/docebo-go/resolver"
)

func newPlatformOrchestrator(t *testing.T, srv *platformtest.Server, opts ...Option) *Orchestrator {
	t.Helper()
	adapter, err := client.New(srv.URL, client.Credentials{
		ClientID:     platformtest.ClientID,
		ClientSecret: platformtest.ClientSecret,
		Username:     platformtest.Username,
		Password:     platformtest.Password,
	}, client.WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	res, err := resolver.New(adapter)
	require.NoError(t, err)
	return newTestOrchestrator(t, res, adapter, opts...)
}

func TestPlatform_EnrollLearningPlan(t *testing.T) {
	srv := platformtest.New(t)
	srv.AddRecords(models.KindLearningPlan, models.Record{"learning_plan_id": 277, "title": "Associate Memory Network"})
	srv.AddRecords(models.KindUser, models.Record{"user_id": 101, "username": "alice", "email": "a@x.com"})
	o := newPlatformOrchestrator(t, srv)

	result, err := o.Run(context.Background(), models.KindLearningPlan, "Associate Memory Network",
		[]string{"a@x.com", "b@x.com"}, OpEnroll, models.EnrollmentOptions{})
	require.NoError(t, err)

	require.NotNil(t, result.Target)
	assert.Equal(t, "277", result.Target.ID)
	assert.Equal(t, "Associate Memory Network", result.Target.DisplayName)

	require.Len(t, result.Successes, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, Outcome{Email: "a@x.com", UserID: "101", ResourceID: "277", Succeeded: true}, result.Successes[0])
	assert.Equal(t, "b@x.com", result.Failures[0].Email)
	assert.Equal(t, "user not found: b@x.com", result.Failures[0].Reason)

	enrollments := srv.Enrollments()
	require.Len(t, enrollments, 1)
	assert.Equal(t, models.KindLearningPlan, enrollments[0].Kind)
	assert.Equal(t, []string{"277"}, enrollments[0].ResourceIDs)
	assert.Equal(t, []string{"101"}, enrollments[0].UserIDs)
	assert.Equal(t, 1, srv.TokenExchanges())
}

func TestPlatform_PerItemPlatformFailures(t *testing.T) {
	srv := platformtest.New(t)
	srv.AddRecords(models.KindCourse, models.Record{"id": 12, "name": "Excel", "code": "XL"})
	srv.AddRecords(models.KindUser,
		models.Record{"user_id": 1, "email": "a@x.com"},
		models.Record{"user_id": 2, "email": "b@x.com"},
		models.Record{"user_id": 3, "email": "c@x.com"},
	)
	srv.FailEnrollment("2", http.StatusForbidden)
	srv.RejectEnrollment("3", "already_enrolled")
	o := newPlatformOrchestrator(t, srv)

	result, err := o.Run(context.Background(), models.KindCourse, "12",
		[]string{"a@x.com", "b@x.com", "c@x.com"}, OpEnroll, models.EnrollmentOptions{Level: models.LevelLearner})
	require.NoError(t, err)

	assert.Equal(t, models.TierDirect, result.Target.Tier)
	assert.Equal(t, []string{"a@x.com"}, emails(result.Successes))
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "enroll failed (status 403): Forbidden", result.Failures[0].Reason)
	assert.Equal(t, "enrollment rejected: already enrolled", result.Failures[1].Reason)
}

func TestPlatform_AuthenticationFailure(t *testing.T) {
	srv := platformtest.New(t)
	srv.FailTokens(http.StatusUnauthorized)
	o := newPlatformOrchestrator(t, srv)

	result, err := o.Run(context.Background(), models.KindCourse, "Excel",
		[]string{"a@x.com", "b@x.com"}, OpEnroll, models.EnrollmentOptions{})
	assert.ErrorIs(t, err, client.ErrAuthenticationFailed)
	require.NotNil(t, result)
	assert.Len(t, result.Failures, 2)
	assert.Empty(t, srv.Calls())
}
