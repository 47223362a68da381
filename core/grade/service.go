package grade

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/catalog"
	"github.com/trezcool/gradebook/core/user"
)

// SchoolRankingTitle labels the school-wide ranking.
const SchoolRankingTitle = "School"

// ErrInvalidReference is returned when a grade refers to an unknown student, class or subject.
var ErrInvalidReference = errors.New("invalid reference")

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		// QueryStudentEntries returns the student's grades in entry order.
		QueryStudentEntries(ctx context.Context, studentID int) ([]Entry, error)
		GetStudentTotals(ctx context.Context, studentID int) (Totals, error)
		// RankClass & RankSchool sum scores per student having at least one grade,
		// ordered by total descending then username ascending.
		RankClass(ctx context.Context, classID int) ([]Standing, error)
		RankSchool(ctx context.Context) ([]Standing, error)
	}

	Users interface {
		GetByID(ctx context.Context, id int) (user.User, error)
	}

	Catalog interface {
		GetClass(ctx context.Context, id int) (catalog.Class, error)
		GetSubject(ctx context.Context, id int) (catalog.Subject, error)
	}

	Service struct {
		repo       Repository
		users      Users
		catalog    Catalog
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, users Users, cat Catalog, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		catalog:    cat,
		validate:   validate,
		translator: translator,
	}
}

// Record stores one grade after checking that the student, class & subject exist.
func (svc *Service) Record(ctx context.Context, ng NewGrade) (Grade, error) {
	if err := ng.Validate(svc.validate); err != nil {
		return Grade{}, core.TranslateErrors(err, svc.translator)
	}
	g, err := ng.grade()
	if err != nil {
		return Grade{}, err
	}
	if err = svc.checkReferences(ctx, g); err != nil {
		return Grade{}, err
	}

	g, err = svc.repo.CreateGrade(ctx, g)
	if err != nil {
		if errors.Cause(err) == ErrInvalidReference {
			return Grade{}, core.NewValidationError(ErrInvalidReference)
		}
		return Grade{}, errors.Wrap(err, "creating grade")
	}
	return g, nil
}

func (svc *Service) checkReferences(ctx context.Context, g Grade) error {
	var flds []core.FieldError

	usr, err := svc.users.GetByID(ctx, g.StudentID)
	switch {
	case errors.Cause(err) == user.ErrNotFound || (err == nil && !usr.IsStudent()):
		flds = append(flds, core.FieldError{Field: "student", Error: "student not found"})
	case err != nil:
		return errors.Wrap(err, "finding student")
	}

	if _, err = svc.catalog.GetClass(ctx, g.ClassID); err != nil {
		if errors.Cause(err) != catalog.ErrClassNotFound {
			return errors.Wrap(err, "finding class")
		}
		flds = append(flds, core.FieldError{Field: "class", Error: err.Error()})
	}

	if _, err = svc.catalog.GetSubject(ctx, g.SubjectID); err != nil {
		if errors.Cause(err) != catalog.ErrSubjectNotFound {
			return errors.Wrap(err, "finding subject")
		}
		flds = append(flds, core.FieldError{Field: "subject", Error: err.Error()})
	}

	if len(flds) > 0 {
		return core.NewValidationError(ErrInvalidReference, flds...)
	}
	return nil
}

// Report returns the student's grades with their sum & average (both 0 without grades).
func (svc *Service) Report(ctx context.Context, studentID int) (Report, error) {
	entries, err := svc.repo.QueryStudentEntries(ctx, studentID)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying student grades")
	}
	totals, err := svc.repo.GetStudentTotals(ctx, studentID)
	if err != nil {
		return Report{}, errors.Wrap(err, "computing student totals")
	}
	return Report{
		Entries: entries,
		Total:   totals.Sum.Float64,
		Average: totals.Average.Float64,
	}, nil
}

// ClassRanking ranks the students graded in the class. An unknown class is labelled UnknownClassName.
func (svc *Service) ClassRanking(ctx context.Context, classID int) (Ranking, error) {
	title := UnknownClassName
	class, err := svc.catalog.GetClass(ctx, classID)
	switch {
	case err == nil:
		title = class.Name
	case errors.Cause(err) != catalog.ErrClassNotFound:
		return Ranking{}, errors.Wrap(err, "finding class")
	}

	standings, err := svc.repo.RankClass(ctx, classID)
	if err != nil {
		return Ranking{}, errors.Wrap(err, "ranking class")
	}
	return Ranking{Title: title, Standings: standings}, nil
}

func (svc *Service) SchoolRanking(ctx context.Context) (Ranking, error) {
	standings, err := svc.repo.RankSchool(ctx)
	if err != nil {
		return Ranking{}, errors.Wrap(err, "ranking school")
	}
	return Ranking{Title: SchoolRankingTitle, Standings: standings}, nil
}
