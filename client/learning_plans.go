package client

import (
	"context"

	"github.com/vaintrub/docebo-go/models"
)

// GetLearningPlan retrieves a learning plan by platform id.
func (a *Adapter) GetLearningPlan(ctx context.Context, planID string) (*models.LearningPlan, error) {
	if planID == "" {
		return nil, &ValidationError{Field: "planID", Message: "cannot be empty"}
	}
	rec, err := a.Get(ctx, models.KindLearningPlan, planID)
	if err != nil {
		return nil, err
	}
	return models.LearningPlanFromRecord(rec), nil
}

// SearchLearningPlans returns the first page of learning plans matching text.
func (a *Adapter) SearchLearningPlans(ctx context.Context, text string, pageSize int) ([]*models.LearningPlan, error) {
	recs, err := a.Search(ctx, models.KindLearningPlan, text, pageSize)
	if err != nil {
		return nil, err
	}
	plans := make([]*models.LearningPlan, 0, len(recs))
	for _, rec := range recs {
		plans = append(plans, models.LearningPlanFromRecord(rec))
	}
	return plans, nil
}

// ListLearningPlansIter returns an iterator over all learning plans.
func (a *Adapter) ListLearningPlansIter(pageSize int) *Iterator[*models.LearningPlan] {
	return NewIterator(func(ctx context.Context, page, size int) (PageResult[*models.LearningPlan], error) {
		res, err := a.ListPage(ctx, models.KindLearningPlan, "", page, size)
		if err != nil {
			return PageResult[*models.LearningPlan]{}, err
		}
		plans := make([]*models.LearningPlan, 0, len(res.Items))
		for _, rec := range res.Items {
			plans = append(plans, models.LearningPlanFromRecord(rec))
		}
		return PageResult[*models.LearningPlan]{Items: plans, Total: res.Total, HasMore: res.HasMore}, nil
	}, IteratorConfig{PageSize: pageSize})
}
