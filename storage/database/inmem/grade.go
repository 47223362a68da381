package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

// sorted returns the grades matching keep in insertion order. The read lock must be held.
func (repo *gradeRepository) sorted(keep func(g *grade.Grade) bool) []grade.Grade {
	grades := make([]grade.Grade, 0)
	for _, g := range repo.db.grades {
		if keep(g) {
			grades = append(grades, *g)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	return grades
}

func (repo *gradeRepository) CreateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	_, okStudent := repo.db.users[g.StudentID]
	_, okClass := repo.db.classes[g.ClassID]
	_, okSubject := repo.db.subjects[g.SubjectID]
	if !(okStudent && okClass && okSubject) {
		return grade.Grade{}, grade.ErrInvalidReference
	}

	g.ID = repo.db.nextID("grades")
	repo.db.grades[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) QueryStudentEntries(_ context.Context, studentID int) ([]grade.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := repo.sorted(func(g *grade.Grade) bool { return g.StudentID == studentID })
	entries := make([]grade.Entry, 0, len(grades))
	for _, g := range grades {
		entries = append(entries, grade.Entry{
			SubjectName: repo.db.subjects[g.SubjectID].Name,
			ClassName:   repo.db.classes[g.ClassID].Name,
			Score:       g.Score,
		})
	}
	return entries, nil
}

func (repo *gradeRepository) GetStudentTotals(_ context.Context, studentID int) (grade.Totals, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var (
		sum float64
		n   int
	)
	for _, g := range repo.sorted(func(g *grade.Grade) bool { return g.StudentID == studentID }) {
		sum += g.Score
		n++
	}
	if n == 0 {
		return grade.Totals{}, nil
	}
	return grade.Totals{
		Sum:     null.Float64From(sum),
		Average: null.Float64From(sum / float64(n)),
	}, nil
}

func (repo *gradeRepository) RankClass(_ context.Context, classID int) ([]grade.Standing, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.rank(func(g *grade.Grade) bool { return g.ClassID == classID }), nil
}

func (repo *gradeRepository) RankSchool(_ context.Context) ([]grade.Standing, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.rank(func(*grade.Grade) bool { return true }), nil
}

// rank sums the kept grades per student. The read lock must be held.
func (repo *gradeRepository) rank(keep func(g *grade.Grade) bool) []grade.Standing {
	totals := make(map[int]float64)
	for _, g := range repo.sorted(keep) {
		totals[g.StudentID] += g.Score
	}

	standings := make([]grade.Standing, 0, len(totals))
	for studentID, total := range totals {
		standings = append(standings, grade.Standing{
			Username: repo.db.users[studentID].Username,
			Total:    total,
		})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Total == standings[j].Total {
			return standings[i].Username < standings[j].Username
		}
		return standings[i].Total > standings[j].Total
	})
	return standings
}
