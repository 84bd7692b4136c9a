package patient

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Roster(ctx context.Context, doctorEmail string) ([]*RosterEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT patient_id,
		       (array_agg(patient_name ORDER BY created_at DESC))[1],
		       MAX(created_at) AS last_visit,
		       COUNT(*)
		FROM assessments
		WHERE doctor_id = $1 AND patient_id <> ''
		GROUP BY patient_id
		ORDER BY last_visit DESC`,
		doctorEmail,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*RosterEntry{}
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.PatientID, &e.PatientName, &e.LastVisit, &e.AssessmentCount); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *repoPG) Timeline(ctx context.Context, doctorEmail, patientID string) ([]*Visit, string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, risk_score, risk_level,
		       trestbps, chol, thalach, oldpeak, restecg,
		       smoking_status, diabetes_status, family_history_diabetes, pregnancy_status,
		       input, patient_name
		FROM assessments
		WHERE doctor_id = $1 AND patient_id = $2
		ORDER BY created_at DESC`,
		doctorEmail, patientID,
	)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	visits := []*Visit{}
	patientName := ""
	for rows.Next() {
		var v Visit
		var name string
		if err := rows.Scan(
			&v.ID, &v.CreatedAt, &v.RiskScore, &v.RiskLevel,
			&v.Trestbps, &v.Chol, &v.Thalach, &v.Oldpeak, &v.Restecg,
			&v.SmokingStatus, &v.DiabetesStatus, &v.FamilyHistoryDiabetes, &v.PregnancyStatus,
			&v.Input, &name,
		); err != nil {
			return nil, "", err
		}
		if patientName == "" {
			patientName = name
		}
		visits = append(visits, &v)
	}
	return visits, patientName, rows.Err()
}
