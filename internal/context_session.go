package internal

import (
	"errors"
	"log/slog"

	"github.com/dmitrymomot/kotori/pkg/session"
)

// registerSessionHook persists a dirty session right before the response
// headers go out. It runs once per request.
func (c *requestContext) registerSessionHook() {
	if c.state.sessionHookRegistered {
		return
	}
	c.state.sessionHookRegistered = true

	sm := c.app.sessionManager
	st := c.state
	ctx := c.request.Context()
	c.responseWriter.OnBeforeWrite(func() {
		if err := sm.Flush(ctx, st.session); err != nil {
			c.app.logger.ErrorContext(ctx, "failed to save session", slog.Any("error", err))
		}
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	sm := c.app.sessionManager
	if sm == nil {
		return nil, session.ErrNotConfigured
	}
	c.registerSessionHook()

	if c.state.sessionLoaded {
		return c.state.session, nil
	}

	sess, err := sm.LoadSession(c.Context(), c.request)
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrExpired),
		errors.Is(err, session.ErrInvalidToken):
		c.LogDebug("session cookie rejected", slog.Any("error", err))
		sess = nil
	case err != nil:
		return nil, err
	}

	c.state.session = sess
	c.state.sessionLoaded = true
	return sess, nil
}

func (c *requestContext) InitSession() error {
	sm := c.app.sessionManager
	if sm == nil {
		return session.ErrNotConfigured
	}
	c.registerSessionHook()

	sess, err := sm.CreateSession(c.Context(), c.request)
	if err != nil {
		return err
	}

	c.state.session = sess
	c.state.sessionLoaded = true
	sm.SaveSession(c.response, sess)
	return nil
}

func (c *requestContext) AuthenticateSession(userID string) error {
	sm := c.app.sessionManager
	if sm == nil {
		return session.ErrNotConfigured
	}

	sess, err := c.Session()
	if err != nil {
		c.LogWarn("failed to load session", slog.Any("error", err))
	}
	if sess == nil {
		if err := c.InitSession(); err != nil {
			return err
		}
		sess = c.state.session
	}

	sess.SetUserID(userID)

	// A new token on login prevents session fixation.
	if err := sm.RotateToken(c.Context(), sess); err != nil {
		return err
	}
	sm.SaveSession(c.response, sess)
	return nil
}

func (c *requestContext) UserID() string {
	sess, err := c.Session()
	if err != nil || sess == nil || sess.UserID == nil {
		return ""
	}
	return *sess.UserID
}

func (c *requestContext) IsAuthenticated() bool {
	return c.UserID() != ""
}

func (c *requestContext) SessionValue(key string) (any, error) {
	sess, err := c.existingSession()
	if err != nil {
		return nil, err
	}
	val, ok := sess.GetValue(key)
	if !ok {
		return nil, nil
	}
	return val, nil
}

func (c *requestContext) SetSessionValue(key string, val any) error {
	sess, err := c.existingSession()
	if err != nil {
		return err
	}
	sess.SetValue(key, val)
	return nil
}

func (c *requestContext) DeleteSessionValue(key string) error {
	sess, err := c.existingSession()
	if err != nil {
		return err
	}
	sess.DeleteValue(key)
	return nil
}

func (c *requestContext) DestroySession() error {
	sm := c.app.sessionManager
	if sm == nil {
		return session.ErrNotConfigured
	}

	if sess, _ := c.Session(); sess != nil {
		if err := sm.Store().Delete(c.Context(), sess.ID); err != nil {
			return err
		}
	}
	sm.DeleteSession(c.response)

	c.state.session = nil
	c.state.sessionLoaded = true
	return nil
}

// existingSession returns the loaded session or session.ErrNotFound.
func (c *requestContext) existingSession() (*session.Session, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, session.ErrNotFound
	}
	return sess, nil
}
