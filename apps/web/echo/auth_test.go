package echoweb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

func Test_deriveKey(t *testing.T) {
	session := deriveKey("secret", sessionKeyInfo)
	flash := deriveKey("secret", flashKeyInfo)

	assert.Len(t, session, derivedKeyLen)
	assert.Len(t, flash, derivedKeyLen)
	assert.NotEqual(t, session, flash)
	assert.NotEqual(t, []byte("secret"), session)
	assert.Equal(t, session, deriveKey("secret", sessionKeyInfo))
	assert.NotEqual(t, session, deriveKey("other", sessionKeyInfo))
}

func Test_authenticator_parseToken(t *testing.T) {
	auth := newAuthenticator(&core.Config{AppName: "Gradebook", SecretKey: "secret", SessionExpirationDelta: time.Hour})
	usr := user.User{ID: 7, Username: "alice", Role: user.RoleStudent}

	valid, err := auth.GenerateToken(usr)
	require.NoError(t, err)

	otherKey, err := newAuthenticator(&core.Config{SecretKey: "other", SessionExpirationDelta: time.Hour}).GenerateToken(usr)
	require.NoError(t, err)

	expired, err := newAuthenticator(&core.Config{SecretKey: "secret", SessionExpirationDelta: -time.Minute}).GenerateToken(usr)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.claims(usr)).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole := auth.claims(usr)
	badRole.Role = "janitor"
	forgedRole, err := jwt.NewWithClaims(signingMethod, badRole).SignedString(auth.secretKey)
	require.NoError(t, err)

	rawSecret, err := jwt.NewWithClaims(signingMethod, auth.claims(usr)).SignedString([]byte("secret"))
	require.NoError(t, err)

	flashKey, err := jwt.NewWithClaims(signingMethod, auth.claims(usr)).SignedString(deriveKey("secret", flashKeyInfo))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		want    user.Identity
		wantErr error
	}{
		{name: "valid", token: valid, want: usr.Identity()},
		{name: "garbage", token: "lmaooolol", wantErr: errInvalidToken},
		{name: "other key", token: otherKey, wantErr: errInvalidToken},
		{name: "expired", token: expired, wantErr: errInvalidToken},
		{name: "alg none", token: unsigned, wantErr: errInvalidToken},
		{name: "unknown role", token: forgedRole, wantErr: errInvalidToken},
		{name: "signed with the raw secret", token: rawSecret, wantErr: errInvalidToken},
		{name: "signed with the flash key", token: flashKey, wantErr: errInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.parseToken(tt.token)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_server_forgedSession(t *testing.T) {
	app := setup(t)

	rec := app.request(t, http.MethodGet, "/teacher", nil, nil, &http.Cookie{Name: sessionCookieName, Value: "forged"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// the bad cookie is cleared
	session := findCookie(rec, sessionCookieName)
	require.NotNil(t, session)
	assert.Empty(t, session.Value)
}

func Test_server_healthz(t *testing.T) {
	app := setup(t)

	rec := app.request(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","build":"test"}`, rec.Body.String())

	app.srv.opts.HealthCheck = func(context.Context) error { return errors.New("connection refused") }
	rec = app.request(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func Test_appHTTPErrorHandler(t *testing.T) {
	app := setup(t)

	handler := newAppHTTPErrorHandler(app.srv, app.srv.opts.Logger)

	tests := []struct {
		name     string
		method   string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "unauthorized", method: http.MethodGet, err: errUnauthorized, wantCode: http.StatusSeeOther},
		{name: "not found", method: http.MethodGet, err: errHttpNotFound, wantCode: http.StatusNotFound, wantBody: "not found"},
		{name: "validation", method: http.MethodPost, err: core.NewValidationError(errors.New("bad input")), wantCode: http.StatusBadRequest, wantBody: "bad input"},
		{name: "server error", method: http.MethodGet, err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantBody: "Internal Server Error"},
		{name: "head", method: http.MethodHead, err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			rec := httptest.NewRecorder()
			handler(tt.err, app.srv.app.NewContext(req, rec))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			if tt.method == http.MethodHead {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}
