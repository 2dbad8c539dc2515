package chart

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/emr/internal/domain/patient"
	"github.com/ehr/emr/internal/platform/db"
)

type Handler struct {
	loader *Loader
}

func NewHandler(loader *Loader) *Handler {
	return &Handler{loader: loader}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id", h.GetChart)
}

func (h *Handler) GetChart(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	ch, err := h.loader.Load(c.Request().Context(), id)
	if errors.Is(err, patient.ErrNotFound) {
		return patient.RespondNotFound(c)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, db.Message(err))
	}
	return c.JSON(http.StatusOK, ch)
}
