package models

// Course is a typed view over a course record.
type Course struct {
	ID          string
	Code        string
	Name        string
	Description string
	Type        string // elearning, classroom, webinar
	Status      string
	UpdatedAt   *PlatformTime
	Record      Record
}

// CourseFromRecord builds a Course from a raw record.
func CourseFromRecord(r Record) *Course {
	return &Course{
		ID:          r.ID(KindCourse),
		Code:        r.Code(KindCourse),
		Name:        r.DisplayName(KindCourse),
		Description: r.Description(KindCourse),
		Type:        r.FirstNonEmpty("type", "course_type"),
		Status:      r.FirstNonEmpty("status", "course_status"),
		UpdatedAt:   parseRecordTime(r, "date_last_updated", "last_update"),
		Record:      r,
	}
}

func parseRecordTime(r Record, keys ...string) *PlatformTime {
	s := r.FirstNonEmpty(keys...)
	if s == "" {
		return nil
	}
	var t PlatformTime
	if err := t.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		return nil
	}
	return &t
}
