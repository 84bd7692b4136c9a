package patient

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/cardionova/cardionova/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the doctor views on an authenticated group. Both
// endpoints additionally require the Doctor role.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	doctor := g.Group("/doctor", auth.RequireRole("Doctor"))
	doctor.GET("/patients", h.ListPatients)
	doctor.GET("/patient/:patient_id", h.GetPatientProfile)
}

func (h *Handler) ListPatients(c echo.Context) error {
	email := auth.EmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	patients, err := h.svc.Patients(c.Request().Context(), email)
	if err != nil {
		log.Error().Err(err).Msg("load patient roster failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load patients")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"patients": patients})
}

func (h *Handler) GetPatientProfile(c echo.Context) error {
	email := auth.EmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	patientID := c.Param("patient_id")
	if patientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}

	profile, err := h.svc.PatientProfile(c.Request().Context(), email, patientID)
	if err != nil {
		log.Error().Err(err).Msg("load patient profile failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load patient profile")
	}
	return c.JSON(http.StatusOK, profile)
}
