package assessment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record maps to the assessments table. One row per completed risk
// assessment. UserID and DoctorID both carry the clinician's email; they
// are kept as separate columns because self-service history is scoped by
// UserID while the doctor's patient views are scoped by DoctorID.
type Record struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	DoctorID    string    `db:"doctor_id" json:"doctorId"`
	PatientID   string    `db:"patient_id" json:"patientId,omitempty"`
	PatientName string    `db:"patient_name" json:"patientName,omitempty"`

	Input     map[string]interface{} `db:"input" json:"input"`
	Lifestyle map[string]interface{} `db:"lifestyle" json:"lifestyle"`

	// Charting columns, flattened out of Input and Lifestyle so trend
	// queries never parse JSON.
	Trestbps *float64 `db:"trestbps" json:"trestbps,omitempty"`
	Chol     *float64 `db:"chol" json:"chol,omitempty"`
	Thalach  *float64 `db:"thalach" json:"thalach,omitempty"`
	Oldpeak  *float64 `db:"oldpeak" json:"oldpeak,omitempty"`
	Restecg  *float64 `db:"restecg" json:"restecg,omitempty"`

	SmokingStatus         *string `db:"smoking_status" json:"smoking_status,omitempty"`
	DiabetesStatus        *string `db:"diabetes_status" json:"diabetes_status,omitempty"`
	FamilyHistoryDiabetes *string `db:"family_history_diabetes" json:"family_history_diabetes,omitempty"`
	PregnancyStatus       *string `db:"pregnancy_status" json:"pregnancy_status,omitempty"`

	RiskScore float64 `db:"risk_score" json:"risk_score"`
	RiskLevel string  `db:"risk_level" json:"risk_level"`

	TopFeatures          []FeatureContribution `db:"top_features" json:"top_features"`
	ExplanationText      string                `db:"explanation_text" json:"explanation_text"`
	LifestyleSuggestions []string              `db:"lifestyle_suggestions" json:"lifestyle_suggestions"`
	FollowupPlan         string                `db:"followup_plan" json:"followup_plan"`
	PrescriptionSummary  string                `db:"prescription_summary" json:"prescription_summary"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FeatureContribution is one feature's attribution as stored and served.
type FeatureContribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// DerivePatientID scopes a patient identity to the submitting doctor.
// Two patients with the same name under one doctor collapse into one
// identity; that is a known limitation carried from the data model.
func DerivePatientID(doctorEmail, patientName string) string {
	name := strings.ToLower(strings.TrimSpace(patientName))
	if doctorEmail == "" || name == "" {
		return ""
	}
	return doctorEmail + "::" + name
}
