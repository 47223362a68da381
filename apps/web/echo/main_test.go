package echoweb

import (
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/catalog"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
	logsvc "github.com/trezcool/gradebook/services/logger"
	inmemdb "github.com/trezcool/gradebook/storage/database/inmem"
	"github.com/trezcool/gradebook/testutil"
)

type testApp struct {
	srv       *server
	usrRepo   user.Repository
	catRepo   catalog.Repository
	gradeRepo grade.Repository
	gradeSvc  *grade.Service
}

func setup(t *testing.T) *testApp {
	user.HashCost = bcrypt.MinCost

	conf := &core.Config{
		Env:                    "TEST",
		TestMode:               true,
		AppName:                "Gradebook",
		Build:                  "test",
		SecretKey:              core.DefaultSecretKey,
		SessionExpirationDelta: time.Hour,
	}
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)

	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	catRepo := inmemdb.NewCatalogRepository(db)
	gradeRepo := inmemdb.NewGradeRepository(db)

	validate, translator := core.NewValidator()
	usrSvc := user.NewService(usrRepo, validate, translator)
	catSvc := catalog.NewService(catRepo, validate, translator)
	gradeSvc := grade.NewService(gradeRepo, usrSvc, catSvc, validate, translator)

	app, err := NewServer(&Options{
		Conf:           conf,
		DisableReqLogs: true,
		Logger:         logger,
		Validate:       validate,
		UserSvc:        usrSvc,
		CatalogSvc:     catSvc,
		GradeSvc:       gradeSvc,
	})
	require.NoError(t, err)

	return &testApp{
		srv:       app.(*server),
		usrRepo:   usrRepo,
		catRepo:   catRepo,
		gradeRepo: gradeRepo,
		gradeSvc:  gradeSvc,
	}
}

type httpTest struct {
	name         string
	method       string
	path         string
	form         url.Values
	usr          *user.User
	wantCode     int
	wantLocation string
	wantBody     []string
	notWantBody  []string
}

// request serves a request authenticated as usr (anonymous when nil) & carrying cookies.
func (a *testApp) request(t *testing.T, method, path string, form url.Values, usr *user.User, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if usr != nil {
		token, err := a.srv.auth.GenerateToken(*usr)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.srv.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.request(t, tt.method, tt.path, tt.form, tt.usr)
			checkResponse(t, tt, rec)
		})
	}
}

func checkResponse(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	if tt.wantLocation != "" {
		assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"), "location")
	}
	body := rec.Body.String()
	for _, want := range tt.wantBody {
		assert.Contains(t, body, want)
	}
	for _, notWant := range tt.notWantBody {
		assert.NotContains(t, body, notWant)
	}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// assertOrder checks that the items appear in body in the given order.
func assertOrder(t *testing.T, body string, items ...string) {
	last := -1
	for _, item := range items {
		idx := strings.Index(body, item)
		if !assert.NotEqual(t, -1, idx, "%q not found", item) {
			return
		}
		assert.Greater(t, idx, last, "%q out of order", item)
		last = idx
	}
}

type users struct {
	alice   user.User
	bob     user.User
	teacher user.User
	admin   user.User
}

func (a *testApp) createUsers(t *testing.T) users {
	return users{
		alice:   testutil.CreateUser(t, a.usrRepo, "alice", "secret", user.RoleStudent),
		bob:     testutil.CreateUser(t, a.usrRepo, "bob", "secret", user.RoleStudent),
		teacher: testutil.CreateUser(t, a.usrRepo, "mrsmith", "secret", user.RoleTeacher),
		admin:   testutil.CreateUser(t, a.usrRepo, "principal", "secret", user.RoleAdmin),
	}
}
