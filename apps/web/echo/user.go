package echoweb

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

const accountCreatedMsg = "Account created, you can now log in."

type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (s *server) index(ctx echo.Context) error {
	if id := identityFrom(ctx); !id.IsZero() {
		return ctx.Redirect(http.StatusSeeOther, homePath(id.Role))
	}
	return s.ok(ctx, "index", &page{Title: s.opts.Conf.AppName})
}

func (s *server) registerForm(ctx echo.Context) error {
	return s.ok(ctx, "register", &page{Title: "Register", Form: user.NewUser{Role: string(user.RoleStudent)}})
}

func (s *server) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	if _, err := s.opts.UserSvc.Register(ctx.Request().Context(), data); err != nil {
		msg, flds, ok := formErrors(err)
		if !ok {
			return errors.Wrap(err, "registering user")
		}
		data.Password = ""
		return s.render(ctx, http.StatusBadRequest, "register", &page{
			Title:  "Register",
			Error:  msg,
			Errors: flds,
			Form:   data,
		})
	}

	if err := s.addFlash(ctx, accountCreatedMsg); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

func (s *server) loginForm(ctx echo.Context) error {
	return s.ok(ctx, "login", &page{Title: "Login", Form: LoginRequest{}})
}

func (s *server) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(s.opts.Validate); err != nil {
		return s.loginFailed(ctx, data, user.ErrInvalidCredentials)
	}

	usr, err := s.opts.UserSvc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return s.loginFailed(ctx, data, err)
		}
		return errors.Wrap(err, "authenticating")
	}

	if err = s.auth.login(ctx, usr); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, homePath(usr.Role))
}

func (s *server) loginFailed(ctx echo.Context, data LoginRequest, err error) error {
	data.Password = ""
	return s.render(ctx, http.StatusBadRequest, "login", &page{
		Title: "Login",
		Error: err.Error(),
		Form:  data,
	})
}

func (s *server) logout(ctx echo.Context) error {
	s.auth.logout(ctx)
	return ctx.Redirect(http.StatusSeeOther, "/")
}
