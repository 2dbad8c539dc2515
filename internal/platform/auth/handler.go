package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/signup", h.SignUp)
	g.POST("/signin", h.SignIn)
	g.POST("/signout", h.SignOut)
	g.GET("/session", h.Session)
}

type signUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authError maps service errors to the status and message shown on the form.
func authError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid login credentials")
	case errors.Is(err, ErrUserExists):
		return echo.NewHTTPError(http.StatusConflict, "User already registered")
	case errors.Is(err, ErrPasswordMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, "Passwords do not match")
	case errors.Is(err, ErrPasswordTooShort):
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters")
	case errors.Is(err, ErrInvalidEmail):
		return echo.NewHTTPError(http.StatusBadRequest, "A valid email is required")
	case errors.Is(err, ErrNoSession):
		return echo.NewHTTPError(http.StatusUnauthorized, "No active session")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.SignUp(c.Request().Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		return authError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"user":  u,
		"login": LoginPath,
	})
}

func (h *Handler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return authError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) SignOut(c echo.Context) error {
	token := bearerToken(c.Request())
	if token == "" {
		return authError(ErrNoSession)
	}
	if err := h.svc.SignOut(c.Request().Context(), token); err != nil {
		return authError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Session(c echo.Context) error {
	token := bearerToken(c.Request())
	if token == "" {
		return authError(ErrNoSession)
	}
	sess, err := h.svc.Session(c.Request().Context(), token)
	if err != nil {
		return authError(err)
	}
	return c.JSON(http.StatusOK, sess)
}
