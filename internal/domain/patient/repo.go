package patient

import "context"

type Repository interface {
	// Roster returns the doctor's distinct patients ordered by most recent
	// visit. Records without a patient identity are excluded.
	Roster(ctx context.Context, doctorEmail string) ([]*RosterEntry, error)
	// Timeline returns all of one patient's visits for the doctor, newest
	// first. An unknown patient yields an empty slice, not an error.
	Timeline(ctx context.Context, doctorEmail, patientID string) ([]*Visit, string, error)
}
