package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const sessionKey contextKey = "session"

// LoginPath is where clients without a session are sent.
const LoginPath = "/auth/signin"

// WithSession stores sess on ctx.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey).(*Session)
	return sess
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.UserID
	}
	return uuid.Nil
}

func EmailFromContext(ctx context.Context) string {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.Email
	}
	return ""
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireSession rejects requests without a live session with 401 and a
// pointer to the login entry point. It checks identity only; roles are not
// consulted.
func RequireSession(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IsPublicPath(c.Path()) {
				return next(c)
			}

			token := bearerToken(c.Request())
			if token == "" {
				return unauthorized(c, "missing session")
			}
			sess, err := svc.Session(c.Request().Context(), token)
			if err != nil {
				return unauthorized(c, "Session expired or invalid. Please sign in again.")
			}

			c.Set("user_id", sess.UserID.String())
			c.SetRequest(c.Request().WithContext(WithSession(c.Request().Context(), sess)))
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error": msg,
		"login": LoginPath,
	})
}
