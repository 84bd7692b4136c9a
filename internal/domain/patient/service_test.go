package patient

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockVisit struct {
	Visit
	doctorID    string
	patientID   string
	patientName string
}

type mockRepo struct {
	visits []mockVisit
}

func (m *mockRepo) add(doctor, patientName string, createdAt time.Time, score float64) {
	patientID := ""
	if patientName != "" {
		patientID = doctor + "::" + patientName
	}
	m.visits = append(m.visits, mockVisit{
		Visit: Visit{
			ID:        uuid.New(),
			CreatedAt: createdAt,
			RiskScore: score,
			RiskLevel: "Moderate",
			Input:     map[string]interface{}{},
		},
		doctorID:    doctor,
		patientID:   patientID,
		patientName: patientName,
	})
}

func (m *mockRepo) Roster(_ context.Context, doctorEmail string) ([]*RosterEntry, error) {
	byPatient := map[string]*RosterEntry{}
	for _, v := range m.visits {
		if v.doctorID != doctorEmail || v.patientID == "" {
			continue
		}
		e, ok := byPatient[v.patientID]
		if !ok {
			e = &RosterEntry{PatientID: v.patientID, PatientName: v.patientName}
			byPatient[v.patientID] = e
		}
		e.AssessmentCount++
		if e.LastVisit == nil || v.CreatedAt.After(*e.LastVisit) {
			t := v.CreatedAt
			e.LastVisit = &t
		}
	}
	entries := []*RosterEntry{}
	for _, e := range byPatient {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(a, b int) bool {
		return entries[a].LastVisit.After(*entries[b].LastVisit)
	})
	return entries, nil
}

func (m *mockRepo) Timeline(_ context.Context, doctorEmail, patientID string) ([]*Visit, string, error) {
	visits := []*Visit{}
	name := ""
	for i := range m.visits {
		v := m.visits[i]
		if v.doctorID != doctorEmail || v.patientID != patientID {
			continue
		}
		visits = append(visits, &m.visits[i].Visit)
		name = v.patientName
	}
	sort.Slice(visits, func(a, b int) bool {
		return visits[a].CreatedAt.After(visits[b].CreatedAt)
	})
	return visits, name, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := &mockRepo{}
	return NewService(repo), repo
}

func TestPatients_GroupsByIdentity(t *testing.T) {
	svc, repo := newTestService()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Two visits for the same name collapse into one roster entry.
	repo.add("doc@clinic.test", "ravi kumar", base, 0.4)
	repo.add("doc@clinic.test", "ravi kumar", base.Add(48*time.Hour), 0.5)
	repo.add("doc@clinic.test", "meera shah", base.Add(24*time.Hour), 0.3)
	// Anonymous and foreign records are excluded.
	repo.add("doc@clinic.test", "", base, 0.2)
	repo.add("other@clinic.test", "ravi kumar", base, 0.9)

	entries, err := svc.Patients(context.Background(), "doc@clinic.test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 patients, got %d", len(entries))
	}
	if entries[0].PatientName != "ravi kumar" || entries[0].AssessmentCount != 2 {
		t.Errorf("expected ravi kumar first with 2 assessments, got %+v", entries[0])
	}
	if entries[1].PatientName != "meera shah" || entries[1].AssessmentCount != 1 {
		t.Errorf("expected meera shah second, got %+v", entries[1])
	}
	if !entries[0].LastVisit.After(*entries[1].LastVisit) {
		t.Error("roster must be ordered by most recent visit")
	}
}

func TestPatientProfile(t *testing.T) {
	svc, repo := newTestService()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	repo.add("doc@clinic.test", "ravi kumar", base, 0.3)
	repo.add("doc@clinic.test", "ravi kumar", base.Add(24*time.Hour), 0.5)
	repo.add("doc@clinic.test", "ravi kumar", base.Add(48*time.Hour), 0.7)

	p, err := svc.PatientProfile(context.Background(), "doc@clinic.test", "doc@clinic.test::ravi kumar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.PatientName != "ravi kumar" {
		t.Errorf("unexpected name %q", p.PatientName)
	}
	if p.Stats.AssessmentCount != 3 {
		t.Errorf("expected 3 assessments, got %d", p.Stats.AssessmentCount)
	}
	if !p.Stats.FirstVisit.Equal(base) || !p.Stats.LastVisit.Equal(base.Add(48*time.Hour)) {
		t.Errorf("unexpected visit bounds %v..%v", p.Stats.FirstVisit, p.Stats.LastVisit)
	}

	if len(p.History) != 3 || !p.History[0].CreatedAt.After(p.History[2].CreatedAt) {
		t.Error("history must be newest first")
	}
	if len(p.Timeseries) != 3 || !p.Timeseries[0].Date.Before(p.Timeseries[2].Date) {
		t.Error("timeseries must be oldest first")
	}
	if p.Timeseries[0].RiskScore != 0.3 || p.Timeseries[2].RiskScore != 0.7 {
		t.Errorf("unexpected timeseries scores %+v", p.Timeseries)
	}
}

func TestPatientProfile_UnknownPatient(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.PatientProfile(context.Background(), "doc@clinic.test", "doc@clinic.test::nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Stats.AssessmentCount != 0 || p.Stats.FirstVisit != nil || p.Stats.LastVisit != nil {
		t.Errorf("expected zero stats, got %+v", p.Stats)
	}
	if len(p.History) != 0 || len(p.Timeseries) != 0 {
		t.Error("expected empty history and timeseries")
	}
}
