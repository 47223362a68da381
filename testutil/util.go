// Package testutil holds the fixtures shared by the tests of every layer.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/catalog"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/storage/database"
)

// DatabaseURLEnv names the variable pointing the repository tests to a disposable PostgreSQL database.
const DatabaseURLEnv = "TEST_DATABASE_URL"

// PrepareDB opens, migrates & empties the test database. The test is skipped when DatabaseURLEnv is unset.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv(DatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", DatabaseURLEnv)
	}
	conf := &core.Config{
		Database: core.DatabaseConfig{
			Engine:       "postgres",
			URL:          url,
			MaxOpenConns: 5,
			MaxIdleConns: 5,
		},
	}

	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if _, err = db.Exec(`TRUNCATE grades, credentials, subjects, classes, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, uname, pwd string, role user.Role) user.User {
	t.Helper()

	usr := user.User{
		Username: uname,
		Role:     role,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo catalog.Repository, name string) catalog.Class {
	t.Helper()

	class, err := repo.CreateClass(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return class
}

func CreateSubject(t *testing.T, repo catalog.Repository, name string) catalog.Subject {
	t.Helper()

	subject, err := repo.CreateSubject(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subject
}

func CreateGrade(t *testing.T, repo grade.Repository, student user.User, class catalog.Class, subject catalog.Subject, score float64) grade.Grade {
	t.Helper()

	g, err := repo.CreateGrade(context.Background(), grade.Grade{
		StudentID: student.ID,
		ClassID:   class.ID,
		SubjectID: subject.ID,
		Score:     score,
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return g
}
