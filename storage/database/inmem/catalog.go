package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/gradebook/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateClass(_ context.Context, name string) (catalog.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, c := range repo.db.classes {
		if c.Name == name {
			return catalog.Class{}, catalog.ErrClassExists
		}
	}
	class := catalog.Class{ID: repo.db.nextID("classes"), Name: name}
	repo.db.classes[class.ID] = &class
	return class, nil
}

func (repo *catalogRepository) CreateSubject(_ context.Context, name string) (catalog.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, s := range repo.db.subjects {
		if s.Name == name {
			return catalog.Subject{}, catalog.ErrSubjectExists
		}
	}
	subject := catalog.Subject{ID: repo.db.nextID("subjects"), Name: name}
	repo.db.subjects[subject.ID] = &subject
	return subject, nil
}

func (repo *catalogRepository) QueryClasses(_ context.Context) ([]catalog.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]catalog.Class, 0, len(repo.db.classes))
	for _, c := range repo.db.classes {
		classes = append(classes, *c)
	}
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].Name == classes[j].Name {
			return classes[i].ID < classes[j].ID
		}
		return classes[i].Name < classes[j].Name
	})
	return classes, nil
}

func (repo *catalogRepository) QuerySubjects(_ context.Context) ([]catalog.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]catalog.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Name == subjects[j].Name {
			return subjects[i].ID < subjects[j].ID
		}
		return subjects[i].Name < subjects[j].Name
	})
	return subjects, nil
}

func (repo *catalogRepository) GetClassByID(_ context.Context, id int) (catalog.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		return *c, nil
	}
	return catalog.Class{}, catalog.ErrClassNotFound
}

func (repo *catalogRepository) GetSubjectByID(_ context.Context, id int) (catalog.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return *s, nil
	}
	return catalog.Subject{}, catalog.ErrSubjectNotFound
}
