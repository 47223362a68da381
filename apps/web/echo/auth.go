package echoweb

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

const (
	sessionCookieName  = "gradebook_session"
	contextIdentityKey = "identity"
)

var (
	signingMethod = jwt.SigningMethodHS256

	errInvalidToken = errors.New("invalid session token")
)

// Claims represents the session claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string    `json:"username"`
	Role     user.Role `json:"role"`
}

func (c *Claims) identity() (user.Identity, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil || id <= 0 || !c.Role.Valid() {
		return user.Identity{}, errInvalidToken
	}
	return user.Identity{UserID: id, Username: c.Username, Role: c.Role}, nil
}

type authenticator struct {
	appName    string
	secretKey  []byte
	expiration time.Duration
	secure     bool
}

func newAuthenticator(conf *core.Config) *authenticator {
	return &authenticator{
		appName:    conf.AppName,
		secretKey:  deriveKey(conf.SecretKey, sessionKeyInfo),
		expiration: conf.SessionExpirationDelta,
		secure:     !(conf.Debug || conf.TestMode),
	}
}

func (a *authenticator) claims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.appName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(a.expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: usr.Username,
		Role:     usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func (a *authenticator) GenerateToken(usr user.User) (string, error) {
	token := jwt.NewWithClaims(signingMethod, a.claims(usr))
	ss, err := token.SignedString(a.secretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (a *authenticator) parseToken(ss string) (user.Identity, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(ss, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != signingMethod.Alg() {
			return nil, errInvalidToken
		}
		return a.secretKey, nil
	})
	if err != nil {
		return user.Identity{}, errInvalidToken
	}
	return claims.identity()
}

func (a *authenticator) login(ctx echo.Context, usr user.User) error {
	token, err := a.GenerateToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(a.expiration),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (a *authenticator) logout(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// loadIdentity resolves the Identity carried by the session cookie, if any.
// A forged or expired token is dropped & the request continues anonymously.
func (a *authenticator) loadIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(sessionCookieName)
		if err == nil && cookie.Value != "" {
			if id, err := a.parseToken(cookie.Value); err == nil {
				ctx.Set(contextIdentityKey, id)
			} else {
				a.logout(ctx)
			}
		}
		return next(ctx)
	}
}

// requireRoles only lets through callers whose role is one of roles.
func requireRoles(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id := identityFrom(ctx)
			if id.IsZero() || !id.Role.In(roles...) {
				return errUnauthorized
			}
			return next(ctx)
		}
	}
}

// identityFrom returns the caller's Identity; it is zero for anonymous requests.
func identityFrom(ctx echo.Context) user.Identity {
	id, _ := ctx.Get(contextIdentityKey).(user.Identity)
	return id
}

// homePath is where a freshly authenticated user lands.
func homePath(role user.Role) string {
	switch role {
	case user.RoleTeacher:
		return "/teacher"
	case user.RoleAdmin:
		return "/admin"
	default:
		return "/student"
	}
}
