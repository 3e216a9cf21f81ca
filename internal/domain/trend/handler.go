package trend

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pulseward/pulseward/internal/domain/wearable"
	"github.com/pulseward/pulseward/internal/platform/auth"
)

type Handler struct {
	svc      *Service
	wearable *wearable.Service
}

func NewHandler(svc *Service, wearableSvc *wearable.Service) *Handler {
	return &Handler{svc: svc, wearable: wearableSvc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	clinician := auth.RequireRole("admin", "physician", "nurse")
	api.GET("/patients/:id/trends", h.GetTrends, clinician)
}

// GetTrends runs trend analysis for every tracked metric over the patient's
// trailing window (?days=N, default 30) and returns the available results.
func (h *Handler) GetTrends(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	days, _ := strconv.Atoi(c.QueryParam("days"))

	readings, err := h.wearable.Window(c.Request().Context(), patientID, days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results := h.svc.Report(c.Request().Context(), patientID, readings)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_id": patientID,
		"trends":     results,
	})
}
