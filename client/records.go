package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vaintrub/docebo-go/models"
)

// Resource paths.
const (
	pathUsers         = "/manage/v1/user"
	pathCourses       = "/learn/v1/courses"
	pathLearningPlans = "/learningplan/v1/learningplans"

	pathCourseEnrollments       = "/learn/v1/enrollments"
	pathLearningPlanEnrollments = "/learningplan/v1/learningplans/enrollments"
)

// MaxPageSize is the largest page the platform serves.
const MaxPageSize = 200

func collectionPath(kind models.Kind) (string, error) {
	switch kind {
	case models.KindUser:
		return pathUsers, nil
	case models.KindCourse:
		return pathCourses, nil
	case models.KindLearningPlan:
		return pathLearningPlans, nil
	}
	return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown resource kind %q", kind)}
}

// Get fetches one record of kind by id.
func (a *Adapter) Get(ctx context.Context, kind models.Kind, id string) (models.Record, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Message: "cannot be empty"}
	}
	path, err := collectionPath(kind)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := a.doJSON(ctx, requestConfig{
		method:     http.MethodGet,
		path:       path + "/%s",
		pathParams: []string{id},
	}, &env); err != nil {
		return nil, err
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("[]")) {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("%s %s not found", kind.Label(), id)}
	}

	var rec models.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, newProtocolError(http.StatusOK, data, err)
	}
	// Some surfaces wrap single records in {"data": {"item": {...}}}.
	if inner, ok := rec["item"].(map[string]interface{}); ok && len(rec) == 1 {
		rec = models.Record(inner)
	}
	if len(rec) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("%s %s not found", kind.Label(), id)}
	}
	return rec, nil
}

// ListPage fetches one page of kind. searchText may be empty.
func (a *Adapter) ListPage(ctx context.Context, kind models.Kind, searchText string, page, pageSize int) (PageResult[models.Record], error) {
	path, err := collectionPath(kind)
	if err != nil {
		return PageResult[models.Record]{}, err
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}

	query := url.Values{
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(pageSize)},
	}
	if searchText != "" {
		query.Set("search_text", searchText)
	}

	var env envelope
	if err := a.doJSON(ctx, requestConfig{
		method: http.MethodGet,
		path:   path,
		query:  query,
	}, &env); err != nil {
		return PageResult[models.Record]{}, err
	}

	var data pageData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return PageResult[models.Record]{}, newProtocolError(http.StatusOK, env.Data, err)
		}
	}

	total := int(data.TotalCount)
	if total == 0 && len(data.Items) > 0 {
		total = -1
	}
	return PageResult[models.Record]{
		Items:   data.Items,
		Total:   total,
		HasMore: bool(data.HasMoreData),
	}, nil
}

// Search returns the first page of kind matching text.
func (a *Adapter) Search(ctx context.Context, kind models.Kind, text string, pageSize int) ([]models.Record, error) {
	res, err := a.ListPage(ctx, kind, text, 1, pageSize)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// RecordIter returns an iterator over every record of kind matching searchText.
func (a *Adapter) RecordIter(kind models.Kind, searchText string, pageSize int) *Iterator[models.Record] {
	return NewIterator(func(ctx context.Context, page, size int) (PageResult[models.Record], error) {
		return a.ListPage(ctx, kind, searchText, page, size)
	}, IteratorConfig{PageSize: pageSize})
}
