package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_String(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string trimmed", "  Excel  ", "Excel"},
		{"float64 integer", float64(277), "277"},
		{"large float64 has no exponent", float64(12345678901), "12345678901"},
		{"fractional float64", 2.5, "2.5"},
		{"json number", json.Number("2420"), "2420"},
		{"int", 42, "42"},
		{"int64", int64(7), "7"},
		{"bool", true, "true"},
		{"nil", nil, ""},
		{"unsupported type", []string{"x"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Record{"k": tt.value}.String("k"))
		})
	}
	assert.Empty(t, Record{}.String("missing"))
}

func TestRecord_DecodedNumbers(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"learning_plan_id": 277, "title": "AMN"}`), &rec))
	assert.Equal(t, "277", rec.ID(KindLearningPlan))
	assert.Equal(t, "AMN", rec.DisplayName(KindLearningPlan))
}

func TestRecord_Aliases(t *testing.T) {
	user := Record{"user_id": 101, "username": "alan", "email": "alan@x.com"}
	assert.Equal(t, "101", user.ID(KindUser))
	assert.Equal(t, "alan", user.DisplayName(KindUser))

	course := Record{"idCourse": "12", "name": "", "course_name": "Excel", "code": "XL"}
	assert.Equal(t, "12", course.ID(KindCourse))
	assert.Equal(t, "Excel", course.DisplayName(KindCourse), "empty values fall through to the next alias")
	assert.Equal(t, "XL", course.Code(KindCourse))

	assert.Empty(t, course.ID(Kind("badge")))
}

func TestRecord_Clone(t *testing.T) {
	orig := Record{"id": 1}
	clone := orig.Clone()
	clone["id"] = 2
	assert.Equal(t, 1, orig["id"])
	assert.Nil(t, Record(nil).Clone())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"user", KindUser, false},
		{" Users ", KindUser, false},
		{"course", KindCourse, false},
		{"LP", KindLearningPlan, false},
		{"learning-plan", KindLearningPlan, false},
		{"learningplan", KindLearningPlan, false},
		{"plan", KindLearningPlan, false},
		{"badge", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "learning plan", KindLearningPlan.Label())
	assert.True(t, KindCourse.Enrollable())
	assert.False(t, KindUser.Enrollable())
}

func TestPlatformTime(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2026, 1, 1, 2, 30, 0, 0, loc)

	out, err := json.Marshal(NewPlatformTime(&ts))
	require.NoError(t, err)
	assert.Equal(t, `"2026-01-01 00:30:00"`, string(out))
	assert.Nil(t, NewPlatformTime(nil))

	for _, in := range []string{`"2026-01-01 00:30:00"`, `"2026-01-01T00:30:00Z"`} {
		var pt PlatformTime
		require.NoError(t, json.Unmarshal([]byte(in), &pt), in)
		assert.True(t, pt.Equal(time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC)), in)
	}

	var day PlatformTime
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-04"`), &day))
	assert.Equal(t, "2026-03-04", day.Format(time.DateOnly))

	var empty PlatformTime
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())

	var bad PlatformTime
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))
}
