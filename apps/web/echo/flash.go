package echoweb

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

const flashSessionName = "gradebook_flash"

func newFlashStore(conf *core.Config) sessions.Store {
	store := sessions.NewCookieStore(deriveKey(conf.SecretKey, flashKeyInfo))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   !(conf.Debug || conf.TestMode),
	}
	return store
}

// addFlash queues a notice shown on the next rendered page.
func (s *server) addFlash(ctx echo.Context, msg string) error {
	sess, _ := s.flashes.Get(ctx.Request(), flashSessionName) // a tampered cookie yields a fresh session
	sess.AddFlash(msg)
	if err := sess.Save(ctx.Request(), ctx.Response()); err != nil {
		return errors.Wrap(err, "saving flash")
	}
	return nil
}

// popFlashes returns & clears the queued notices.
func (s *server) popFlashes(ctx echo.Context) []string {
	sess, err := s.flashes.Get(ctx.Request(), flashSessionName)
	if err != nil || sess.IsNew {
		return nil
	}
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err = sess.Save(ctx.Request(), ctx.Response()); err != nil {
		s.opts.Logger.Warn("clearing flashes", err)
	}

	msgs := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
