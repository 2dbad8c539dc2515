package allergy

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
	api.GET("/patients/:id/allergies", h.ListAllergies)
	api.PUT("/patients/:id/allergies", h.SaveAllergies)
}

type saveRequest struct {
	Draft string `json:"draft"`
}

type listResponse struct {
	Allergies []*Allergy `json:"allergies"`
	Draft     string     `json:"draft"`
}

func (h *Handler) ListAllergies(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	list, err := h.svc.List(c.Request().Context(), id)
	if errors.Is(err, patient.ErrNotFound) {
		return patient.RespondNotFound(c)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, db.Message(err))
	}
	return c.JSON(http.StatusOK, listResponse{Allergies: list, Draft: DraftText(list)})
}

// SaveAllergies applies a draft. On failure the submitted draft is echoed
// back so the edit box keeps what the user typed.
func (h *Handler) SaveAllergies(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	list, err := h.svc.SaveDraft(c.Request().Context(), id, req.Draft)
	if errors.Is(err, patient.ErrNotFound) {
		return patient.RespondNotFound(c)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": db.Message(err),
			"draft": req.Draft,
		})
	}
	return c.JSON(http.StatusOK, listResponse{Allergies: list, Draft: DraftText(list)})
}
