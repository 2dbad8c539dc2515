package staff

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/emr/internal/platform/auth"
	"github.com/ehr/emr/internal/platform/db"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/profile", h.GetProfile)
	api.PUT("/profile", h.SaveProfile)
}

type saveRequest struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (h *Handler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx), auth.EmailFromContext(ctx))
	if err != nil {
		return profileError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SaveProfile(c echo.Context) error {
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	p, err := h.svc.Save(ctx, auth.UserIDFromContext(ctx), auth.EmailFromContext(ctx), req.FullName, req.Role)
	if err != nil {
		return profileError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func profileError(err error) error {
	if errors.Is(err, ErrNoUser) {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, db.Message(err))
}
