package models

// FieldAliases lists, per logical field, the remote field names to try in order.
type FieldAliases struct {
	ID          []string
	Name        []string
	Code        []string
	Description []string
	// Identity holds extra fields that identify a record exactly (email, username).
	Identity []string
}

var (
	userAliases = FieldAliases{
		ID:          []string{"user_id", "id", "idst", "id_user"},
		Name:        []string{"fullname", "full_name", "name", "username", "email"},
		Code:        []string{"username", "userid"},
		Description: []string{"email"},
		Identity:    []string{"email", "username"},
	}
	courseAliases = FieldAliases{
		ID:          []string{"id", "course_id", "idCourse", "id_course"},
		Name:        []string{"name", "title", "course_name"},
		Code:        []string{"code", "course_code"},
		Description: []string{"description", "course_description"},
	}
	learningPlanAliases = FieldAliases{
		ID:          []string{"learning_plan_id", "id", "id_path", "learningplan_id"},
		Name:        []string{"title", "name", "path_name"},
		Code:        []string{"code", "path_code"},
		Description: []string{"description", "path_descr"},
	}
)

// AliasesFor returns the field aliases for kind.
func AliasesFor(kind Kind) FieldAliases {
	switch kind {
	case KindUser:
		return userAliases
	case KindCourse:
		return courseAliases
	case KindLearningPlan:
		return learningPlanAliases
	}
	return FieldAliases{}
}

// ID returns the record's identifier for kind.
func (r Record) ID(kind Kind) string {
	return r.FirstNonEmpty(AliasesFor(kind).ID...)
}

// DisplayName returns the record's display name for kind.
func (r Record) DisplayName(kind Kind) string {
	return r.FirstNonEmpty(AliasesFor(kind).Name...)
}

// Code returns the record's short code for kind.
func (r Record) Code(kind Kind) string {
	return r.FirstNonEmpty(AliasesFor(kind).Code...)
}

// Description returns the record's description for kind.
func (r Record) Description(kind Kind) string {
	return r.FirstNonEmpty(AliasesFor(kind).Description...)
}
