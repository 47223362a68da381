// Package repotest checks that a storage engine honours the repository contracts.
package repotest

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/gradebook/core/catalog"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/testutil"
)

// outOfInt4 is an id past the 32-bit range; lookups must treat it as unknown.
const outOfInt4 = 1 << 40

type Repos struct {
	Users   user.Repository
	Catalog catalog.Repository
	Grades  grade.Repository
}

// Run runs the contract tests, calling newRepos for a fresh & empty store in each.
func Run(t *testing.T, newRepos func(t *testing.T) Repos) {
	user.HashCost = bcrypt.MinCost

	t.Run("users", func(t *testing.T) { testUsers(t, newRepos(t)) })
	t.Run("catalog", func(t *testing.T) { testCatalog(t, newRepos(t)) })
	t.Run("grades", func(t *testing.T) { testGrades(t, newRepos(t)) })
	t.Run("rankings", func(t *testing.T) { testRankings(t, newRepos(t)) })
}

func testUsers(t *testing.T, repos Repos) {
	ctx := context.Background()
	bob := testutil.CreateUser(t, repos.Users, "bob", "secret", user.RoleStudent)
	alice := testutil.CreateUser(t, repos.Users, "alice", "secret", user.RoleStudent)
	teacher := testutil.CreateUser(t, repos.Users, "mrsmith", "secret", user.RoleTeacher)

	assert.NotZero(t, bob.ID)
	assert.NotEqual(t, bob.ID, alice.ID)

	_, err := repos.Users.CreateUser(ctx, user.User{Username: "bob", Role: user.RoleTeacher, PasswordHash: []byte("x")})
	assert.Equal(t, user.ErrUsernameExists, errors.Cause(err))

	got, err := repos.Users.GetUserByID(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, teacher, got)
	assert.NoError(t, got.CheckPassword("secret"))

	got, err = repos.Users.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	_, err = repos.Users.GetUserByID(ctx, 9999)
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	_, err = repos.Users.GetUserByID(ctx, outOfInt4)
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	_, err = repos.Users.GetUserByUsername(ctx, "nobody")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))

	students, err := repos.Users.QueryUsersByRole(ctx, user.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, []user.User{alice, bob}, students)

	admins, err := repos.Users.QueryUsersByRole(ctx, user.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func testCatalog(t *testing.T, repos Repos) {
	ctx := context.Background()
	math := testutil.CreateClass(t, repos.Catalog, "Math 101")
	algebra := testutil.CreateClass(t, repos.Catalog, "Algebra")
	physics := testutil.CreateSubject(t, repos.Catalog, "Physics")

	_, err := repos.Catalog.CreateClass(ctx, "Math 101")
	assert.Equal(t, catalog.ErrClassExists, errors.Cause(err))
	_, err = repos.Catalog.CreateSubject(ctx, "Physics")
	assert.Equal(t, catalog.ErrSubjectExists, errors.Cause(err))

	// classes & subjects have separate namespaces
	_, err = repos.Catalog.CreateSubject(ctx, "Math 101")
	assert.NoError(t, err)

	classes, err := repos.Catalog.QueryClasses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Class{algebra, math}, classes)

	subjects, err := repos.Catalog.QuerySubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, physics, subjects[1])

	got, err := repos.Catalog.GetClassByID(ctx, math.ID)
	require.NoError(t, err)
	assert.Equal(t, math, got)
	_, err = repos.Catalog.GetClassByID(ctx, 9999)
	assert.Equal(t, catalog.ErrClassNotFound, errors.Cause(err))
	_, err = repos.Catalog.GetClassByID(ctx, outOfInt4)
	assert.Equal(t, catalog.ErrClassNotFound, errors.Cause(err))

	gotSubject, err := repos.Catalog.GetSubjectByID(ctx, physics.ID)
	require.NoError(t, err)
	assert.Equal(t, physics, gotSubject)
	_, err = repos.Catalog.GetSubjectByID(ctx, 9999)
	assert.Equal(t, catalog.ErrSubjectNotFound, errors.Cause(err))
	_, err = repos.Catalog.GetSubjectByID(ctx, outOfInt4)
	assert.Equal(t, catalog.ErrSubjectNotFound, errors.Cause(err))
}

func testGrades(t *testing.T, repos Repos) {
	ctx := context.Background()
	alice := testutil.CreateUser(t, repos.Users, "alice", "secret", user.RoleStudent)
	bob := testutil.CreateUser(t, repos.Users, "bob", "secret", user.RoleStudent)
	class := testutil.CreateClass(t, repos.Catalog, "Class A")
	math := testutil.CreateSubject(t, repos.Catalog, "Math")
	physics := testutil.CreateSubject(t, repos.Catalog, "Physics")

	totals, err := repos.Grades.GetStudentTotals(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, totals.Sum.Valid)
	assert.False(t, totals.Average.Valid)

	testutil.CreateGrade(t, repos.Grades, alice, class, physics, 80)
	testutil.CreateGrade(t, repos.Grades, alice, class, math, 90)
	testutil.CreateGrade(t, repos.Grades, alice, class, math, 70) // repeated entries all count
	testutil.CreateGrade(t, repos.Grades, bob, class, math, 10)

	_, err = repos.Grades.CreateGrade(ctx, grade.Grade{StudentID: alice.ID, ClassID: 9999, SubjectID: math.ID, Score: 1})
	assert.Equal(t, grade.ErrInvalidReference, errors.Cause(err))
	_, err = repos.Grades.CreateGrade(ctx, grade.Grade{StudentID: outOfInt4, ClassID: class.ID, SubjectID: math.ID, Score: 1})
	assert.Equal(t, grade.ErrInvalidReference, errors.Cause(err))

	entries, err := repos.Grades.QueryStudentEntries(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []grade.Entry{
		{SubjectName: "Physics", ClassName: "Class A", Score: 80},
		{SubjectName: "Math", ClassName: "Class A", Score: 90},
		{SubjectName: "Math", ClassName: "Class A", Score: 70},
	}, entries)

	totals, err = repos.Grades.GetStudentTotals(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 240.0, totals.Sum.Float64)
	assert.Equal(t, 80.0, totals.Average.Float64)
}

func testRankings(t *testing.T, repos Repos) {
	ctx := context.Background()
	alice := testutil.CreateUser(t, repos.Users, "alice", "secret", user.RoleStudent)
	bob := testutil.CreateUser(t, repos.Users, "bob", "secret", user.RoleStudent)
	chuck := testutil.CreateUser(t, repos.Users, "chuck", "secret", user.RoleStudent)
	testutil.CreateUser(t, repos.Users, "dave", "secret", user.RoleStudent) // never graded
	classA := testutil.CreateClass(t, repos.Catalog, "Class A")
	classB := testutil.CreateClass(t, repos.Catalog, "Class B")
	math := testutil.CreateSubject(t, repos.Catalog, "Math")
	physics := testutil.CreateSubject(t, repos.Catalog, "Physics")

	testutil.CreateGrade(t, repos.Grades, bob, classA, math, 50)
	testutil.CreateGrade(t, repos.Grades, bob, classA, physics, 50)
	testutil.CreateGrade(t, repos.Grades, alice, classA, math, 100)
	testutil.CreateGrade(t, repos.Grades, chuck, classA, math, 30)
	testutil.CreateGrade(t, repos.Grades, chuck, classB, math, 90)

	standings, err := repos.Grades.RankClass(ctx, classA.ID)
	require.NoError(t, err)
	assert.Equal(t, []grade.Standing{
		{Username: "alice", Total: 100}, // ties broken by username
		{Username: "bob", Total: 100},
		{Username: "chuck", Total: 30},
	}, standings)

	standings, err = repos.Grades.RankClass(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, standings)

	standings, err = repos.Grades.RankClass(ctx, outOfInt4)
	require.NoError(t, err)
	assert.Empty(t, standings)

	standings, err = repos.Grades.RankSchool(ctx)
	require.NoError(t, err)
	assert.Equal(t, []grade.Standing{
		{Username: "chuck", Total: 120},
		{Username: "alice", Total: 100},
		{Username: "bob", Total: 100},
	}, standings)
}
