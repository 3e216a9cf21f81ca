package threshold

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pulseward/pulseward/internal/domain/wearable"
	"github.com/pulseward/pulseward/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	clinician := auth.RequireRole("admin", "physician", "nurse")

	api.GET("/patients/:id/thresholds", h.GetThresholds, clinician)
	api.PUT("/patients/:id/thresholds/:metric", h.PutOverride, clinician)
	api.DELETE("/patients/:id/thresholds/:metric", h.DeleteOverride, clinician)
}

// GetThresholds returns the patient's effective band set (defaults merged
// with overrides) plus the raw overrides.
func (h *Handler) GetThresholds(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	bands, err := h.svc.BandsFor(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	overrides, err := h.svc.ListOverrides(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"effective": bands,
		"overrides": overrides,
	})
}

func (h *Handler) PutOverride(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var o Override
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o.PatientID = patientID
	o.Metric = wearable.Metric(c.Param("metric"))
	o.SetBy = auth.UserIDFrom(c.Request().Context())

	if err := h.svc.SetOverride(c.Request().Context(), &o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) DeleteOverride(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	metric := wearable.Metric(c.Param("metric"))
	if err := h.svc.ClearOverride(c.Request().Context(), patientID, metric); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
