package echoweb

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/catalog"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
)

const gradeRecordedMsg = "Grade recorded."

type gradeFormView struct {
	Students []user.User
	Classes  []catalog.Class
	Subjects []catalog.Subject
}

func (s *server) gradeFormView(ctx echo.Context) (gradeFormView, error) {
	rctx := ctx.Request().Context()
	students, err := s.opts.UserSvc.QueryStudents(rctx)
	if err != nil {
		return gradeFormView{}, errors.Wrap(err, "querying students")
	}
	classes, err := s.opts.CatalogSvc.QueryClasses(rctx)
	if err != nil {
		return gradeFormView{}, errors.Wrap(err, "querying classes")
	}
	subjects, err := s.opts.CatalogSvc.QuerySubjects(rctx)
	if err != nil {
		return gradeFormView{}, errors.Wrap(err, "querying subjects")
	}
	return gradeFormView{Students: students, Classes: classes, Subjects: subjects}, nil
}

func (s *server) gradeForm(ctx echo.Context) error {
	view, err := s.gradeFormView(ctx)
	if err != nil {
		return err
	}
	return s.ok(ctx, "teacher", &page{Title: "Enter grades", Form: grade.NewGrade{}, Data: view})
}

func (s *server) recordGrade(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}

	code, p := http.StatusOK, &page{Title: "Enter grades", Form: grade.NewGrade{}}
	if _, err := s.opts.GradeSvc.Record(ctx.Request().Context(), data); err != nil {
		msg, flds, ok := formErrors(err)
		if !ok {
			return errors.Wrap(err, "recording grade")
		}
		code, p.Error, p.Errors, p.Form = http.StatusBadRequest, msg, flds, data
	} else {
		p.Notice = gradeRecordedMsg
	}

	view, err := s.gradeFormView(ctx)
	if err != nil {
		return err
	}
	p.Data = view
	return s.render(ctx, code, "teacher", p)
}

func (s *server) studentReport(ctx echo.Context) error {
	report, err := s.opts.GradeSvc.Report(ctx.Request().Context(), identityFrom(ctx).UserID)
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	return s.ok(ctx, "student", &page{Title: "My grades", Data: report})
}

func (s *server) classRanking(ctx echo.Context) error {
	classID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	ranking, err := s.opts.GradeSvc.ClassRanking(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "ranking class")
	}
	return s.ok(ctx, "ranking", &page{Title: ranking.Title + " Ranking", Data: ranking})
}

func (s *server) schoolRanking(ctx echo.Context) error {
	ranking, err := s.opts.GradeSvc.SchoolRanking(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "ranking school")
	}
	return s.ok(ctx, "ranking", &page{Title: ranking.Title + " Ranking", Data: ranking})
}
