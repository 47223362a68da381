package echoweb

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/testutil"
)

func Test_server_manage(t *testing.T) {
	app := setup(t)
	usrs := app.createUsers(t)
	testutil.CreateSubject(t, app.catRepo, "Physics")

	form := func(kind, name string) url.Values {
		return url.Values{"type": {kind}, "name": {name}}
	}

	app.run(t, []httpTest{
		{name: "anonymous", method: http.MethodGet, path: "/manage", wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "student", method: http.MethodGet, path: "/manage", usr: &usrs.alice, wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "student cannot create", method: http.MethodPost, path: "/manage", form: form("class", "Hacked"), usr: &usrs.alice, wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "teacher", method: http.MethodGet, path: "/manage", usr: &usrs.teacher, wantCode: http.StatusOK, wantBody: []string{"<li>Physics</li>"}},
		{name: "admin", method: http.MethodGet, path: "/manage", usr: &usrs.admin, wantCode: http.StatusOK, wantBody: []string{"<li>Physics</li>"}},
		{
			name:     "create class",
			method:   http.MethodPost,
			path:     "/manage",
			form:     form("class", " Class A "),
			usr:      &usrs.teacher,
			wantCode: http.StatusOK,
			wantBody: []string{"Class created.", `">Class A</a></li>`, `<li><a href="/rank/class/`},
		},
		{
			name:     "create subject",
			method:   http.MethodPost,
			path:     "/manage",
			form:     form("subject", "Math"),
			usr:      &usrs.admin,
			wantCode: http.StatusOK,
			wantBody: []string{"Subject created.", "<li>Math</li>"},
		},
		{
			name:        "duplicate class",
			method:      http.MethodPost,
			path:        "/manage",
			form:        form("class", "Class A"),
			usr:         &usrs.admin,
			wantCode:    http.StatusBadRequest,
			wantBody:    []string{"a class with this name already exists"},
			notWantBody: []string{"Class created."},
		},
		{
			name:     "duplicate subject",
			method:   http.MethodPost,
			path:     "/manage",
			form:     form("subject", "Physics"),
			usr:      &usrs.teacher,
			wantCode: http.StatusBadRequest,
			wantBody: []string{"a subject with this name already exists"},
		},
		{name: "unknown type", method: http.MethodPost, path: "/manage", form: form("room", "B12"), usr: &usrs.teacher, wantCode: http.StatusBadRequest, notWantBody: []string{"B12</li>"}},
		{name: "blank name", method: http.MethodPost, path: "/manage", form: form("class", " "), usr: &usrs.teacher, wantCode: http.StatusBadRequest, wantBody: []string{"this field is required"}},
	})

	ctx := context.Background()
	classes, err := app.srv.opts.CatalogSvc.QueryClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "Class A", classes[0].Name)

	subjects, err := app.srv.opts.CatalogSvc.QuerySubjects(ctx)
	require.NoError(t, err)
	assert.Len(t, subjects, 2)
}

func Test_server_admin(t *testing.T) {
	app := setup(t)
	usrs := app.createUsers(t)
	class := testutil.CreateClass(t, app.catRepo, "Class A")

	app.run(t, []httpTest{
		{name: "anonymous", method: http.MethodGet, path: "/admin", wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "teacher", method: http.MethodGet, path: "/admin", usr: &usrs.teacher, wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "student", method: http.MethodGet, path: "/admin", usr: &usrs.alice, wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{
			name:     "admin",
			method:   http.MethodGet,
			path:     "/admin",
			usr:      &usrs.admin,
			wantCode: http.StatusOK,
			wantBody: []string{`<a href="/rank/class/` + strconv.Itoa(class.ID) + `">Class A</a>`, `href="/rank/school"`},
		},
	})
}
