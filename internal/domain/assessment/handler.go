package assessment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/cardionova/cardionova/internal/platform/auth"
	"github.com/cardionova/cardionova/internal/platform/ml"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the prediction and history endpoints on an
// authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/predict", h.Predict)
	g.GET("/history/:user_email", h.History)
	g.DELETE("/history/item/:id", h.DeleteItem)
}

func (h *Handler) Predict(c echo.Context) error {
	var body map[string]interface{}
	if err := c.Bind(&body); err != nil || body == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in := parsePredictBody(body)
	email := auth.EmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.svc.Predict(c.Request().Context(), email, in)
	if err != nil {
		if ml.IsSchemaError(err) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		if errors.Is(err, ml.ErrModelUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "risk model unavailable")
		}
		log.Error().Err(err).Msg("predict failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "prediction failed")
	}

	rec := out.Record
	resp := map[string]interface{}{
		"id":                    rec.ID,
		"input":                 rec.Input,
		"risk_score":            rec.RiskScore,
		"risk_level":            rec.RiskLevel,
		"top_features":          rec.TopFeatures,
		"explanation_text":      rec.ExplanationText,
		"lifestyle_suggestions": rec.LifestyleSuggestions,
		"followup_plan":         rec.FollowupPlan,
		"prescription_summary":  rec.PrescriptionSummary,
		"lifestyle":             rec.Lifestyle,
		"patientName":           rec.PatientName,
	}
	if out.ShapError != "" {
		resp["shap_error"] = out.ShapError
	}
	return c.JSON(http.StatusOK, resp)
}

// parsePredictBody accepts both the enveloped form {patientName, features,
// lifestyle} and a bare payload where the clinical fields sit at the top
// level.
func parsePredictBody(body map[string]interface{}) PredictInput {
	in := PredictInput{Lifestyle: map[string]interface{}{}}

	if v, ok := body["patientName"].(string); ok {
		in.PatientName = v
	} else if v, ok := body["patient_name"].(string); ok {
		in.PatientName = v
	}
	if v, ok := body["lifestyle"].(map[string]interface{}); ok {
		in.Lifestyle = v
	}

	if v, ok := body["features"].(map[string]interface{}); ok {
		in.Features = v
		return in
	}
	features := make(map[string]interface{}, len(body))
	for k, v := range body {
		switch k {
		case "patientName", "patient_name", "lifestyle", "features":
		default:
			features[k] = v
		}
	}
	in.Features = features
	return in
}

func (h *Handler) History(c echo.Context) error {
	email := auth.EmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if c.Param("user_email") != email {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}

	items, err := h.svc.History(c.Request().Context(), email)
	if err != nil {
		log.Error().Err(err).Msg("load history failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load history")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) DeleteItem(c echo.Context) error {
	email := auth.EmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.svc.DeleteItem(c.Request().Context(), id, email); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		log.Error().Err(err).Msg("delete history item failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete history item")
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}
