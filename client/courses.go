package client

import (
	"context"

	"github.com/vaintrub/docebo-go/models"
)

// GetCourse retrieves a course by platform id.
func (a *Adapter) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if courseID == "" {
		return nil, &ValidationError{Field: "courseID", Message: "cannot be empty"}
	}
	rec, err := a.Get(ctx, models.KindCourse, courseID)
	if err != nil {
		return nil, err
	}
	return models.CourseFromRecord(rec), nil
}

// SearchCourses returns the first page of courses matching text.
func (a *Adapter) SearchCourses(ctx context.Context, text string, pageSize int) ([]*models.Course, error) {
	recs, err := a.Search(ctx, models.KindCourse, text, pageSize)
	if err != nil {
		return nil, err
	}
	courses := make([]*models.Course, 0, len(recs))
	for _, rec := range recs {
		courses = append(courses, models.CourseFromRecord(rec))
	}
	return courses, nil
}

// ListCoursesIter returns an iterator over all courses.
func (a *Adapter) ListCoursesIter(pageSize int) *Iterator[*models.Course] {
	return NewIterator(func(ctx context.Context, page, size int) (PageResult[*models.Course], error) {
		res, err := a.ListPage(ctx, models.KindCourse, "", page, size)
		if err != nil {
			return PageResult[*models.Course]{}, err
		}
		courses := make([]*models.Course, 0, len(res.Items))
		for _, rec := range res.Items {
			courses = append(courses, models.CourseFromRecord(rec))
		}
		return PageResult[*models.Course]{Items: courses, Total: res.Total, HasMore: res.HasMore}, nil
	}, IteratorConfig{PageSize: pageSize})
}
