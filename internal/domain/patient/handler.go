package patient

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/emr/internal/platform/db"
	"github.com/ehr/emr/pkg/pagination"
)

// ListPath is where clients land after a delete or a missing record.
const ListPath = "/api/v1/patients"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts list, create and delete. The chart package serves
// GET /patients/:id.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
}

// ParseID reads the :id path parameter.
func ParseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// RespondNotFound renders the empty state for a patient id with no record.
func RespondNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]any{
		"found": false,
		"error": ErrNotFound.Error(),
		"back":  ListPath,
	})
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, db.Message(err))
	}
	today := h.svc.Today()
	views := make([]View, 0, len(patients))
	for _, p := range patients {
		views = append(views, NewView(p, today))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, total, pg))
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Create(c.Request().Context(), in)
	switch {
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidDOB):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, db.Message(err))
	}
	return c.JSON(http.StatusCreated, NewView(p, h.svc.Today()))
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := ParseID(c)
	if err != nil {
		return err
	}
	err = h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return RespondNotFound(c)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, db.Message(err))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"deleted": id,
		"back":    ListPath,
	})
}
