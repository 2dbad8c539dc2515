package note

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/emr/internal/domain/patient"
	"github.com/ehr/emr/internal/platform/db"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/notes", h.ListNotes)
	api.POST("/patients/:id/notes", h.AddNote)
}

type addRequest struct {
	Text string `json:"note_text"`
}

func (h *Handler) ListNotes(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	notes, err := h.svc.Timeline(c.Request().Context(), id)
	if errors.Is(err, patient.ErrNotFound) {
		return patient.RespondNotFound(c)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, db.Message(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"notes": notes})
}

func (h *Handler) AddNote(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	notes, err := h.svc.Append(c.Request().Context(), id, req.Text)
	switch {
	case errors.Is(err, ErrEmptyNote):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, patient.ErrNotFound):
		return patient.RespondNotFound(c)
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, db.Message(err))
	}
	return c.JSON(http.StatusCreated, map[string]any{"notes": notes})
}
