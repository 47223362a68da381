package grade_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/catalog"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
	inmemdb "github.com/trezcool/gradebook/storage/database/inmem"
	"github.com/trezcool/gradebook/testutil"
)

type fixtures struct {
	svc     *grade.Service
	alice   user.User
	bob     user.User
	teacher user.User
	classA  catalog.Class
	classB  catalog.Class
	math    catalog.Subject
	physics catalog.Subject
}

func setup(t *testing.T) fixtures {
	user.HashCost = bcrypt.MinCost

	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	catRepo := inmemdb.NewCatalogRepository(db)
	validate, translator := core.NewValidator()
	usrSvc := user.NewService(usrRepo, validate, translator)
	catSvc := catalog.NewService(catRepo, validate, translator)

	return fixtures{
		svc:     grade.NewService(inmemdb.NewGradeRepository(db), usrSvc, catSvc, validate, translator),
		alice:   testutil.CreateUser(t, usrRepo, "alice", "secret", user.RoleStudent),
		bob:     testutil.CreateUser(t, usrRepo, "bob", "secret", user.RoleStudent),
		teacher: testutil.CreateUser(t, usrRepo, "mrsmith", "secret", user.RoleTeacher),
		classA:  testutil.CreateClass(t, catRepo, "Class A"),
		classB:  testutil.CreateClass(t, catRepo, "Class B"),
		math:    testutil.CreateSubject(t, catRepo, "Math"),
		physics: testutil.CreateSubject(t, catRepo, "Physics"),
	}
}

func newGrade(student user.User, class catalog.Class, subject catalog.Subject, score string) grade.NewGrade {
	return grade.NewGrade{
		StudentID: strconv.Itoa(student.ID),
		ClassID:   strconv.Itoa(class.ID),
		SubjectID: strconv.Itoa(subject.ID),
		Score:     score,
	}
}

func TestService_Record(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		data       grade.NewGrade
		wantScore  float64
		wantRefErr bool
		wantFields []string
	}{
		{name: "valid", data: newGrade(f.alice, f.classA, f.math, "90"), wantScore: 90},
		{name: "decimal & negative scores", data: newGrade(f.alice, f.classA, f.math, " -2.5 "), wantScore: -2.5},
		{name: "score above 100", data: newGrade(f.bob, f.classB, f.physics, "120"), wantScore: 120},
		{name: "non-numeric score", data: newGrade(f.alice, f.classA, f.math, "abc"), wantFields: []string{"score"}},
		{name: "missing fields", data: grade.NewGrade{}, wantFields: []string{"student", "class", "subject", "score"}},
		{name: "grading a teacher", data: newGrade(f.teacher, f.classA, f.math, "10"), wantRefErr: true, wantFields: []string{"student"}},
		{
			name:       "unknown references",
			data:       grade.NewGrade{StudentID: "999", ClassID: "999", SubjectID: "999", Score: "10"},
			wantRefErr: true,
			wantFields: []string{"student", "class", "subject"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := f.svc.Record(ctx, tt.data)
			if tt.wantFields == nil {
				require.NoError(t, err)
				assert.NotZero(t, g.ID)
				assert.Equal(t, tt.wantScore, g.Score)
				return
			}

			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr), "Record() error = %v", err)
			flds := vErr.FieldMap()
			assert.Len(t, flds, len(tt.wantFields))
			for _, fld := range tt.wantFields {
				assert.Contains(t, flds, fld)
			}
			assert.Equal(t, tt.wantRefErr, errors.Is(err, grade.ErrInvalidReference))
		})
	}

	report, err := f.svc.Report(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, report.Entries, 2)
}

func TestService_Report(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	report, err := f.svc.Report(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, report.Entries)
	assert.Zero(t, report.Total)
	assert.Zero(t, report.Average)

	for _, ng := range []grade.NewGrade{
		newGrade(f.alice, f.classA, f.physics, "80"),
		newGrade(f.alice, f.classB, f.math, "90"),
		newGrade(f.bob, f.classA, f.math, "10"),
	} {
		_, err = f.svc.Record(ctx, ng)
		require.NoError(t, err)
	}

	report, err = f.svc.Report(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []grade.Entry{
		{SubjectName: "Physics", ClassName: "Class A", Score: 80},
		{SubjectName: "Math", ClassName: "Class B", Score: 90},
	}, report.Entries)
	assert.Equal(t, 170.0, report.Total)
	assert.Equal(t, 85.0, report.Average)
}

func TestService_Rankings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, ng := range []grade.NewGrade{
		newGrade(f.bob, f.classA, f.math, "60"),
		newGrade(f.bob, f.classA, f.physics, "40"),
		newGrade(f.alice, f.classA, f.math, "100"),
		newGrade(f.alice, f.classB, f.math, "5"),
	} {
		_, err := f.svc.Record(ctx, ng)
		require.NoError(t, err)
	}

	ranking, err := f.svc.ClassRanking(ctx, f.classA.ID)
	require.NoError(t, err)
	assert.Equal(t, grade.Ranking{
		Title: "Class A",
		Standings: []grade.Standing{
			{Username: "alice", Total: 100},
			{Username: "bob", Total: 100},
		},
	}, ranking)

	ranking, err = f.svc.ClassRanking(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, grade.UnknownClassName, ranking.Title)
	assert.Empty(t, ranking.Standings)

	ranking, err = f.svc.SchoolRanking(ctx)
	require.NoError(t, err)
	assert.Equal(t, grade.SchoolRankingTitle, ranking.Title)
	assert.Equal(t, []grade.Standing{
		{Username: "alice", Total: 105},
		{Username: "bob", Total: 100},
	}, ranking.Standings)
}
