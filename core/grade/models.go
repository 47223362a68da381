package grade

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core"
)

// UnknownClassName labels the ranking of a class that does not exist.
const UnknownClassName = "Unknown"

type Grade struct {
	ID        int     `db:"id"`
	StudentID int     `db:"student_id"`
	ClassID   int     `db:"class_id"`
	SubjectID int     `db:"subject_id"`
	Score     float64 `db:"score"`
}

// NewGrade is the grade entry form. Fields are kept as submitted and parsed after validation.
type NewGrade struct {
	StudentID string `form:"student" validate:"required,number"`
	ClassID   string `form:"class" validate:"required,number"`
	SubjectID string `form:"subject" validate:"required,number"`
	Score     string `form:"score" validate:"required,numeric"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.ClassID = core.CleanString(ng.ClassID)
	ng.SubjectID = core.CleanString(ng.SubjectID)
	ng.Score = core.CleanString(ng.Score)
	return validate.Struct(ng)
}

// grade parses a validated NewGrade.
func (ng NewGrade) grade() (Grade, error) {
	var (
		g   Grade
		err error
	)
	if g.StudentID, err = strconv.Atoi(ng.StudentID); err != nil {
		return Grade{}, core.NewValidationError(err, core.FieldError{Field: "student", Error: "invalid student"})
	}
	if g.ClassID, err = strconv.Atoi(ng.ClassID); err != nil {
		return Grade{}, core.NewValidationError(err, core.FieldError{Field: "class", Error: "invalid class"})
	}
	if g.SubjectID, err = strconv.Atoi(ng.SubjectID); err != nil {
		return Grade{}, core.NewValidationError(err, core.FieldError{Field: "subject", Error: "invalid subject"})
	}
	if g.Score, err = strconv.ParseFloat(ng.Score, 64); err != nil {
		return Grade{}, core.NewValidationError(err, core.FieldError{Field: "score", Error: "score must be a number"})
	}
	return g, nil
}

// Entry is one line of a student's report.
type Entry struct {
	SubjectName string  `db:"subject_name"`
	ClassName   string  `db:"class_name"`
	Score       float64 `db:"score"`
}

// Totals holds the raw aggregates of a student's scores; both are NULL when there are no grades.
type Totals struct {
	Sum     null.Float64 `db:"total"`
	Average null.Float64 `db:"average"`
}

type Report struct {
	Entries []Entry
	Total   float64
	Average float64
}

type Standing struct {
	Username string  `db:"username"`
	Total    float64 `db:"total"`
}

type Ranking struct {
	Title     string
	Standings []Standing
}
