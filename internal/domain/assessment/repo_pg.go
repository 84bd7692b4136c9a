package assessment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const recordCols = `id, user_id, doctor_id, patient_id, patient_name,
	input, lifestyle,
	trestbps, chol, thalach, oldpeak, restecg,
	smoking_status, diabetes_status, family_history_diabetes, pregnancy_status,
	risk_score, risk_level,
	top_features, explanation_text, lifestyle_suggestions, followup_plan, prescription_summary,
	created_at`

func (r *repoPG) Insert(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO assessments (
			id, user_id, doctor_id, patient_id, patient_name,
			input, lifestyle,
			trestbps, chol, thalach, oldpeak, restecg,
			smoking_status, diabetes_status, family_history_diabetes, pregnancy_status,
			risk_score, risk_level,
			top_features, explanation_text, lifestyle_suggestions, followup_plan, prescription_summary
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,
			$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23
		) RETURNING created_at`,
		rec.ID, rec.UserID, rec.DoctorID, rec.PatientID, rec.PatientName,
		rec.Input, rec.Lifestyle,
		rec.Trestbps, rec.Chol, rec.Thalach, rec.Oldpeak, rec.Restecg,
		rec.SmokingStatus, rec.DiabetesStatus, rec.FamilyHistoryDiabetes, rec.PregnancyStatus,
		rec.RiskScore, rec.RiskLevel,
		rec.TopFeatures, rec.ExplanationText, rec.LifestyleSuggestions, rec.FollowupPlan, rec.PrescriptionSummary,
	).Scan(&rec.CreatedAt)
}

func (r *repoPG) ListByUser(ctx context.Context, userEmail string) ([]*Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+`
		FROM assessments
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userEmail,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID, userEmail string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM assessments WHERE id = $1 AND user_id = $2`,
		id, userEmail,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecords(rows pgx.Rows) ([]*Record, error) {
	recs := []*Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.DoctorID, &rec.PatientID, &rec.PatientName,
			&rec.Input, &rec.Lifestyle,
			&rec.Trestbps, &rec.Chol, &rec.Thalach, &rec.Oldpeak, &rec.Restecg,
			&rec.SmokingStatus, &rec.DiabetesStatus, &rec.FamilyHistoryDiabetes, &rec.PregnancyStatus,
			&rec.RiskScore, &rec.RiskLevel,
			&rec.TopFeatures, &rec.ExplanationText, &rec.LifestyleSuggestions, &rec.FollowupPlan, &rec.PrescriptionSummary,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}
