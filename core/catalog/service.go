package catalog

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrClassNotFound         = errors.New("class not found")
	ErrSubjectNotFound       = errors.New("subject not found")
	ErrClassExists     error = &core.DuplicateError{Entity: "class", Field: "name"}
	ErrSubjectExists   error = &core.DuplicateError{Entity: "subject", Field: "name"}
)

type (
	Repository interface {
		CreateClass(ctx context.Context, name string) (Class, error)
		CreateSubject(ctx context.Context, name string) (Subject, error)
		// QueryClasses & QuerySubjects return all entries ordered by name.
		QueryClasses(ctx context.Context) ([]Class, error)
		QuerySubjects(ctx context.Context) ([]Subject, error)
		GetClassByID(ctx context.Context, id int) (Class, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
	}
}

// Create adds a Class or a Subject. A taken name yields a ValidationError wrapping ErrClassExists or ErrSubjectExists.
func (svc *Service) Create(ctx context.Context, ne NewEntry) error {
	if err := ne.Validate(svc.validate); err != nil {
		return core.TranslateErrors(err, svc.translator)
	}

	var err error
	switch ne.Kind {
	case KindClass:
		_, err = svc.repo.CreateClass(ctx, ne.Name)
	case KindSubject:
		_, err = svc.repo.CreateSubject(ctx, ne.Name)
	}
	if err != nil {
		if cause := errors.Cause(err); core.IsDuplicate(cause) {
			return core.NewValidationError(cause, core.FieldError{Field: "name", Error: cause.Error()})
		}
		return errors.Wrapf(err, "creating %s", ne.Kind)
	}
	return nil
}

func (svc *Service) QueryClasses(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryClasses(ctx)
}

func (svc *Service) QuerySubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *Service) GetClass(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) GetSubject(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}
