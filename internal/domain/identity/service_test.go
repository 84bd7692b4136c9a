package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cardionova/cardionova/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	users     map[string]*User
	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[string]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[u.Email]; ok {
		return ErrDuplicateEmail
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.users[u.Email] = u
	return nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewService(repo, issuer), repo
}

func TestSignup(t *testing.T) {
	svc, repo := newTestService()

	err := svc.Signup(context.Background(), "Dr. Asha Rao", "asha@clinic.test", "strongpass1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u := repo.users["asha@clinic.test"]
	if u == nil {
		t.Fatal("expected user to be stored")
	}
	if u.Role != DefaultRole {
		t.Errorf("expected default role %s, got %s", DefaultRole, u.Role)
	}
	if u.PasswordHash == "strongpass1" {
		t.Error("password stored in plaintext")
	}
}

func TestSignup_NormalizesEmail(t *testing.T) {
	svc, repo := newTestService()

	if err := svc.Signup(context.Background(), "Asha", "  Asha@Clinic.Test ", "strongpass1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.users["asha@clinic.test"] == nil {
		t.Error("expected email lowercased and trimmed")
	}
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Signup(ctx, "", "a@b.test", "strongpass1", ""); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Signup(ctx, "Asha", "not-an-email", "strongpass1", ""); err == nil {
		t.Error("expected error for bad email")
	}
	if err := svc.Signup(ctx, "Asha", "a@b.test", "short", ""); err == nil {
		t.Error("expected error for short password")
	}
}

func TestSignup_ValidationErrorsAreTyped(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, args := range [][4]string{
		{"", "a@b.test", "strongpass1", ""},
		{"Asha", "not-an-email", "strongpass1", ""},
		{"Asha", "a@b.test", "short", ""},
	} {
		err := svc.Signup(ctx, args[0], args[1], args[2], args[3])
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("expected ValidationError for %v, got %v", args, err)
		}
	}
}

func TestSignup_RepoFailureIsNotValidation(t *testing.T) {
	svc, repo := newTestService()
	repo.createErr = errors.New("dial tcp 127.0.0.1:5432: connection refused")

	err := svc.Signup(context.Background(), "Asha", "asha@clinic.test", "strongpass1", "")
	if err == nil {
		t.Fatal("expected error when the store is unavailable")
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		t.Errorf("store failure misclassified as validation: %v", err)
	}
}

func TestSignup_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Signup(ctx, "Asha", "asha@clinic.test", "strongpass1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.Signup(ctx, "Asha Again", "asha@clinic.test", "strongpass2", "")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Signup(ctx, "Asha", "asha@clinic.test", "strongpass1", "Doctor"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, u, err := svc.Login(ctx, "asha@clinic.test", "strongpass1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if u.Name != "Asha" || u.Role != "Doctor" {
		t.Errorf("unexpected user %+v", u)
	}
}

func TestLogin_UnknownAndWrongPasswordLookAlike(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Signup(ctx, "Asha", "asha@clinic.test", "strongpass1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, errUnknown := svc.Login(ctx, "nobody@clinic.test", "whatever1")
	_, _, errWrong := svc.Login(ctx, "asha@clinic.test", "wrongpass1")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown account, got %v", errUnknown)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Error("login failures must be indistinguishable")
	}
}
