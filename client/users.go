package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vaintrub/docebo-go/models"
)

// GetUser retrieves a user by platform id.
func (a *Adapter) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "userID", Message: "cannot be empty"}
	}
	rec, err := a.Get(ctx, models.KindUser, userID)
	if err != nil {
		return nil, err
	}
	return models.UserFromRecord(rec), nil
}

// GetUserByEmail retrieves the user whose email equals email, ignoring case.
func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "cannot be empty"}
	}

	recs, err := a.Search(ctx, models.KindUser, email, 50)
	if err != nil {
		return nil, err
	}

	// Find user with exact email match
	for _, rec := range recs {
		user := models.UserFromRecord(rec)
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}

	return nil, &APIError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("user not found with email: %s", email)}
}

// SearchUsers returns the first page of users matching text.
func (a *Adapter) SearchUsers(ctx context.Context, text string, pageSize int) ([]*models.User, error) {
	recs, err := a.Search(ctx, models.KindUser, text, pageSize)
	if err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, models.UserFromRecord(rec))
	}
	return users, nil
}

// ListUsersIter returns an iterator over all users.
func (a *Adapter) ListUsersIter(pageSize int) *Iterator[*models.User] {
	return NewIterator(func(ctx context.Context, page, size int) (PageResult[*models.User], error) {
		res, err := a.ListPage(ctx, models.KindUser, "", page, size)
		if err != nil {
			return PageResult[*models.User]{}, err
		}
		users := make([]*models.User, 0, len(res.Items))
		for _, rec := range res.Items {
			users = append(users, models.UserFromRecord(rec))
		}
		return PageResult[*models.User]{Items: users, Total: res.Total, HasMore: res.HasMore}, nil
	}, IteratorConfig{PageSize: pageSize})
}
