package patient

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Patients returns the doctor's roster, most recently seen first.
func (s *Service) Patients(ctx context.Context, doctorEmail string) ([]*RosterEntry, error) {
	return s.repo.Roster(ctx, doctorEmail)
}

// PatientProfile assembles the per-patient view: stats over all visits, an
// oldest-first charting timeseries and the newest-first visit history. An
// unknown patient yields an empty profile with zero stats.
func (s *Service) PatientProfile(ctx context.Context, doctorEmail, patientID string) (*Profile, error) {
	visits, patientName, err := s.repo.Timeline(ctx, doctorEmail, patientID)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		PatientID:   patientID,
		PatientName: patientName,
		Stats:       Stats{AssessmentCount: len(visits)},
		Timeseries:  make([]TrendPoint, 0, len(visits)),
		History:     make([]Visit, 0, len(visits)),
	}

	for _, v := range visits {
		p.History = append(p.History, *v)

		created := v.CreatedAt
		if p.Stats.LastVisit == nil || created.After(*p.Stats.LastVisit) {
			t := created
			p.Stats.LastVisit = &t
		}
		if p.Stats.FirstVisit == nil || created.Before(*p.Stats.FirstVisit) {
			t := created
			p.Stats.FirstVisit = &t
		}
	}

	// Visits arrive newest first; the chart wants oldest first.
	for i := len(visits) - 1; i >= 0; i-- {
		v := visits[i]
		p.Timeseries = append(p.Timeseries, TrendPoint{
			Date:      v.CreatedAt,
			RiskScore: v.RiskScore,
			Trestbps:  v.Trestbps,
			Chol:      v.Chol,
		})
	}

	return p, nil
}
