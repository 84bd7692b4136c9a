package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cardionova/cardionova/internal/platform/auth"
)

// ErrInvalidCredentials is returned for any login failure, whether the
// account does not exist or the password is wrong. Callers must not
// distinguish the two cases to the client.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidationError marks a user-correctable signup problem. Everything else a
// signup can fail with is an infrastructure error and must not reach the
// client verbatim.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

type Service struct {
	repo   Repository
	issuer *auth.TokenIssuer
}

func NewService(repo Repository, issuer *auth.TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

func (s *Service) Signup(ctx context.Context, name, email, password, role string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" {
		return validationErrorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return validationErrorf("a valid email is required")
	}
	if len(password) < 8 {
		return validationErrorf("password must be at least 8 characters")
	}
	if role == "" {
		role = DefaultRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, &User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
}

// Login verifies the credentials and issues a signed token. The returned
// user carries the display name and role for the client session.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(u.Email, u.Name, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}
