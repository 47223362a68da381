package inmemdb

import (
	"testing"

	"github.com/trezcool/gradebook/storage/database/repotest"
)

func TestRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Repos {
		db := Open()
		return repotest.Repos{
			Users:   NewUserRepository(db),
			Catalog: NewCatalogRepository(db),
			Grades:  NewGradeRepository(db),
		}
	})
}
