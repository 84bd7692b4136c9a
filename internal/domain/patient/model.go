// Package patient serves the doctor-facing views over assessment history:
// the roster of distinct patients a doctor has assessed and a per-patient
// profile with stats, a charting timeseries and the full visit history.
package patient

import (
	"time"

	"github.com/google/uuid"
)

// RosterEntry is one distinct patient of a doctor.
type RosterEntry struct {
	PatientID       string     `json:"patientId"`
	PatientName     string     `json:"patientName"`
	LastVisit       *time.Time `json:"lastVisit"`
	AssessmentCount int        `json:"assessmentCount"`
}

// Visit is one assessment in a patient's profile, trimmed to the fields the
// doctor views chart and list.
type Visit struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RiskScore float64   `json:"risk_score"`
	RiskLevel string    `json:"risk_level"`

	Trestbps *float64 `json:"trestbps,omitempty"`
	Chol     *float64 `json:"chol,omitempty"`
	Thalach  *float64 `json:"thalach,omitempty"`
	Oldpeak  *float64 `json:"oldpeak,omitempty"`
	Restecg  *float64 `json:"restecg,omitempty"`

	SmokingStatus         *string `json:"smoking_status,omitempty"`
	DiabetesStatus        *string `json:"diabetes_status,omitempty"`
	FamilyHistoryDiabetes *string `json:"family_history_diabetes,omitempty"`
	PregnancyStatus       *string `json:"pregnancy_status,omitempty"`

	Input map[string]interface{} `json:"input"`
}

// Stats summarizes a patient's assessment history.
type Stats struct {
	AssessmentCount int        `json:"assessmentCount"`
	FirstVisit      *time.Time `json:"firstVisit"`
	LastVisit       *time.Time `json:"lastVisit"`
}

// TrendPoint is one charting sample. Points are served oldest first so the
// client can plot them directly.
type TrendPoint struct {
	Date      time.Time `json:"date"`
	RiskScore float64   `json:"risk_score"`
	Trestbps  *float64  `json:"trestbps,omitempty"`
	Chol      *float64  `json:"chol,omitempty"`
}

// Profile is the full doctor-facing view of one patient.
type Profile struct {
	PatientID   string       `json:"patientId"`
	PatientName string       `json:"patientName"`
	Stats       Stats        `json:"stats"`
	Timeseries  []TrendPoint `json:"timeseries"`
	History     []Visit      `json:"history"`
}
