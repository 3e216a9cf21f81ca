package checkin

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pulseward/pulseward/internal/platform/auth"
	"github.com/pulseward/pulseward/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	participant := auth.RequireRole("admin", "physician", "nurse", "patient")
	clinician := auth.RequireRole("admin", "physician", "nurse")

	api.POST("/patients/:id/checkin/start", h.Start, participant)
	api.POST("/patients/:id/checkin/reply", h.Reply, participant)
	api.GET("/patients/:id/checkin/transcripts", h.ListTranscripts, clinician)
}

func (h *Handler) Start(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	reply, err := h.svc.Start(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, reply)
}

type replyRequest struct {
	Option OptionID `json:"option"`
	Text   string   `json:"text"`
}

func (h *Handler) Reply(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req replyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reply, err := h.svc.Reply(c.Request().Context(), patientID, req.Option, req.Text)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no active check-in session")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, reply)
}

func (h *Handler) ListTranscripts(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	transcripts, total, err := h.svc.Transcripts(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(transcripts, total, pg.Limit, pg.Offset))
}
