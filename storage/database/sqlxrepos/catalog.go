package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/catalog"
	"github.com/trezcool/gradebook/storage/database"
)

type catalogRepository struct {
	db core.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db core.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateClass(ctx context.Context, name string) (catalog.Class, error) {
	class := catalog.Class{Name: name}
	if err := repo.db.GetContext(ctx, &class.ID, `INSERT INTO classes (name) VALUES ($1) RETURNING id`, name); err != nil {
		if database.IsUniqueViolation(err) {
			return catalog.Class{}, catalog.ErrClassExists
		}
		return catalog.Class{}, errors.Wrap(err, "inserting class")
	}
	return class, nil
}

func (repo *catalogRepository) CreateSubject(ctx context.Context, name string) (catalog.Subject, error) {
	subject := catalog.Subject{Name: name}
	if err := repo.db.GetContext(ctx, &subject.ID, `INSERT INTO subjects (name) VALUES ($1) RETURNING id`, name); err != nil {
		if database.IsUniqueViolation(err) {
			return catalog.Subject{}, catalog.ErrSubjectExists
		}
		return catalog.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subject, nil
}

func (repo *catalogRepository) QueryClasses(ctx context.Context) ([]catalog.Class, error) {
	classes := make([]catalog.Class, 0)
	if err := repo.db.SelectContext(ctx, &classes, `SELECT id, name FROM classes ORDER BY name, id`); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return classes, nil
}

func (repo *catalogRepository) QuerySubjects(ctx context.Context) ([]catalog.Subject, error) {
	subjects := make([]catalog.Subject, 0)
	if err := repo.db.SelectContext(ctx, &subjects, `SELECT id, name FROM subjects ORDER BY name, id`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo *catalogRepository) GetClassByID(ctx context.Context, id int) (catalog.Class, error) {
	var class catalog.Class
	if err := repo.db.GetContext(ctx, &class, `SELECT id, name FROM classes WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Class{}, catalog.ErrClassNotFound
		}
		return catalog.Class{}, errors.Wrap(err, "finding class by ID")
	}
	return class, nil
}

func (repo *catalogRepository) GetSubjectByID(ctx context.Context, id int) (catalog.Subject, error) {
	var subject catalog.Subject
	if err := repo.db.GetContext(ctx, &subject, `SELECT id, name FROM subjects WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Subject{}, catalog.ErrSubjectNotFound
		}
		return catalog.Subject{}, errors.Wrap(err, "finding subject by ID")
	}
	return subject, nil
}
