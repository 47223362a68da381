package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/storage/database"
)

type gradeRepository struct {
	db core.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db core.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	err := repo.db.GetContext(ctx, &g.ID, `
		INSERT INTO grades (student_id, class_id, subject_id, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		g.StudentID, g.ClassID, g.SubjectID, g.Score)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return grade.Grade{}, grade.ErrInvalidReference
		}
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo *gradeRepository) QueryStudentEntries(ctx context.Context, studentID int) ([]grade.Entry, error) {
	entries := make([]grade.Entry, 0)
	err := repo.db.SelectContext(ctx, &entries, `
		SELECT s.name AS subject_name, c.name AS class_name, g.score
		FROM grades g
		JOIN subjects s ON s.id = g.subject_id
		JOIN classes c ON c.id = g.class_id
		WHERE g.student_id = $1
		ORDER BY g.id`,
		studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student grades")
	}
	return entries, nil
}

func (repo *gradeRepository) GetStudentTotals(ctx context.Context, studentID int) (grade.Totals, error) {
	var totals grade.Totals
	err := repo.db.GetContext(ctx, &totals, `
		SELECT SUM(score) AS total, AVG(score) AS average
		FROM grades
		WHERE student_id = $1`,
		studentID)
	if err != nil {
		return grade.Totals{}, errors.Wrap(err, "computing student totals")
	}
	return totals, nil
}

func (repo *gradeRepository) RankClass(ctx context.Context, classID int) ([]grade.Standing, error) {
	standings := make([]grade.Standing, 0)
	err := repo.db.SelectContext(ctx, &standings, `
		SELECT u.username, SUM(g.score) AS total
		FROM grades g
		JOIN users u ON u.id = g.student_id
		WHERE g.class_id = $1
		GROUP BY g.student_id, u.username
		ORDER BY total DESC, u.username ASC`,
		classID)
	if err != nil {
		return nil, errors.Wrap(err, "ranking class")
	}
	return standings, nil
}

func (repo *gradeRepository) RankSchool(ctx context.Context) ([]grade.Standing, error) {
	standings := make([]grade.Standing, 0)
	err := repo.db.SelectContext(ctx, &standings, `
		SELECT u.username, SUM(g.score) AS total
		FROM grades g
		JOIN users u ON u.id = g.student_id
		GROUP BY g.student_id, u.username
		ORDER BY total DESC, u.username ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "ranking school")
	}
	return standings, nil
}
