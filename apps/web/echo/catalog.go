package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/catalog"
)

type catalogView struct {
	Classes  []catalog.Class
	Subjects []catalog.Subject
}

func (s *server) catalogView(ctx echo.Context) (catalogView, error) {
	rctx := ctx.Request().Context()
	classes, err := s.opts.CatalogSvc.QueryClasses(rctx)
	if err != nil {
		return catalogView{}, errors.Wrap(err, "querying classes")
	}
	subjects, err := s.opts.CatalogSvc.QuerySubjects(rctx)
	if err != nil {
		return catalogView{}, errors.Wrap(err, "querying subjects")
	}
	return catalogView{Classes: classes, Subjects: subjects}, nil
}

func (s *server) catalogForm(ctx echo.Context) error {
	view, err := s.catalogView(ctx)
	if err != nil {
		return err
	}
	return s.ok(ctx, "manage", &page{Title: "Classes & subjects", Form: catalog.NewEntry{Kind: catalog.KindClass}, Data: view})
}

func (s *server) createCatalogEntry(ctx echo.Context) error {
	var data catalog.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}

	code, p := http.StatusOK, &page{Title: "Classes & subjects", Form: catalog.NewEntry{Kind: catalog.KindClass}}
	if err := s.opts.CatalogSvc.Create(ctx.Request().Context(), data); err != nil {
		msg, flds, ok := formErrors(err)
		if !ok {
			return errors.Wrap(err, "creating catalog entry")
		}
		code, p.Error, p.Errors, p.Form = http.StatusBadRequest, msg, flds, data
	} else {
		p.Notice = createdNotice(data.Kind)
	}

	view, err := s.catalogView(ctx)
	if err != nil {
		return err
	}
	p.Data = view
	return s.render(ctx, code, "manage", p)
}

func (s *server) adminOverview(ctx echo.Context) error {
	classes, err := s.opts.CatalogSvc.QueryClasses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return s.ok(ctx, "admin", &page{Title: "Administration", Data: classes})
}

func createdNotice(kind string) string {
	if core.CleanString(kind, true /* lower */) == catalog.KindSubject {
		return "Subject created."
	}
	return "Class created."
}
