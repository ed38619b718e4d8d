package models

// LearningPlan is a typed view over a learning plan record.
type LearningPlan struct {
	ID          string
	Code        string
	Title       string
	Description string
	Published   bool
	Record      Record
}

// LearningPlanFromRecord builds a LearningPlan from a raw record.
func LearningPlanFromRecord(r Record) *LearningPlan {
	published := r.FirstNonEmpty("is_published", "published")
	return &LearningPlan{
		ID:          r.ID(KindLearningPlan),
		Code:        r.Code(KindLearningPlan),
		Title:       r.DisplayName(KindLearningPlan),
		Description: r.Description(KindLearningPlan),
		Published:   published == "true" || published == "1",
		Record:      r,
	}
}
