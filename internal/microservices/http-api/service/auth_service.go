package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"popcornhour/internal/apperr"
	"popcornhour/internal/config"
	"popcornhour/internal/microservices/http-api/middleware/auth"
	"popcornhour/internal/microservices/http-api/models"
	"popcornhour/internal/microservices/http-api/repository"
	"popcornhour/internal/pkg/logger"
	"popcornhour/internal/shared"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinPasswordLength = 6
)

// RegisterInput is the registration form after transport decoding.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Session is what a successful login hands back to the transport layer.
type Session struct {
	Token     string
	Principal shared.Principal
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	ResolveSession(ctx context.Context, token string) (*shared.Principal, error)
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionStore
	hasher   auth.PasswordHasher
	validate *validator.Validate
	log      *logger.Logger

	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionStore,
	hasher auth.PasswordHasher,
	cfg *config.Config,
	log *logger.Logger,
) AuthService {
	return &authService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		validate:   validator.New(),
		log:        log,
		secret:     []byte(cfg.SessionSecret),
		sessionTTL: cfg.SessionTTL,
		now:        time.Now,
	}
}

// Register validates the form, then creates a standard user. It does not log in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if err := s.validateRegistration(username, email, in); err != nil {
		return nil, err
	}

	// Check if username exists
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, &apperr.ConstraintViolationError{Field: "username", Message: "username is already taken"}
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	// Check if email exists
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, &apperr.ConstraintViolationError{Field: "email", Message: "email is already registered"}
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	verifier, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: verifier,
		Role:     shared.RoleStandard,
	}

	// the unique indexes still decide a race with a concurrent registration
	if err := s.users.Create(ctx, user); err != nil {
		var cv *apperr.ConstraintViolationError
		if errors.As(err, &cv) {
			return nil, s.describeConflict(ctx, cv, username, email)
		}
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *authService) validateRegistration(username, email string, in RegisterInput) error {
	fields := apperr.FieldErrors{}

	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		fields.Add("username", fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if utf8.RuneCountInString(email) > models.MaxEmailLength {
		fields.Add("email", fmt.Sprintf("email must be at most %d characters", models.MaxEmailLength))
	} else if err := s.validate.Var(email, "required,email"); err != nil {
		fields.Add("email", "a valid email address is required")
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		fields.Add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if in.ConfirmPassword != in.Password {
		fields.Add("confirm_password", "passwords do not match")
	}

	return apperr.Validation(fields)
}

// describeConflict names the field of a storage-level duplicate when the driver did not.
func (s *authService) describeConflict(ctx context.Context, cv *apperr.ConstraintViolationError, username, email string) error {
	field := cv.Field
	if field == "" {
		if _, err := s.users.FindByUsername(ctx, username); err == nil {
			field = "username"
		} else if _, err := s.users.FindByEmail(ctx, email); err == nil {
			field = "email"
		}
	}

	out := &apperr.ConstraintViolationError{Field: field, Err: cv.Err}
	switch field {
	case "username":
		out.Message = "username is already taken"
	case "email":
		out.Message = "email is already registered"
	default:
		out.Message = "an account with these details already exists"
	}
	return out
}

// Login returns the same error for an unknown email and a wrong password.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		// User not found we use dummy compare to mitigate timing attacks (always take same time)
		s.hasher.Verify(s.dummyVerifier(), password)
		return nil, apperr.ErrInvalidCredentials
	}

	if !s.hasher.Verify(user.Password, password) {
		s.log.Debug("login rejected", "user_id", user.ID)
		return nil, apperr.ErrInvalidCredentials
	}

	now := s.now()
	record := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, record); err != nil {
		return nil, err
	}

	token, err := s.signToken(record, now)
	if err != nil {
		_ = s.sessions.Delete(ctx, record.ID)
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	return &Session{
		Token: token,
		Principal: shared.Principal{
			UserID:    user.ID,
			Username:  user.Username,
			Role:      user.Role,
			SessionID: record.ID,
		},
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (s *authService) dummyVerifier() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("popcornhour-timing-equaliser")
		if err != nil {
			s.log.Warn("failed to prepare dummy verifier", "error", err)
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func (s *authService) signToken(record *models.Session, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        record.ID,
		Subject:   record.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *authService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("invalid signing method")
	}
	return s.secret, nil
}

func (s *authService) parseToken(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	parsed, err := jwt.ParseWithClaims(token, claims, s.keyFunc, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Logout ends the session behind token. Unknown, expired and malformed tokens succeed.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	// an expired token still names a record worth deleting
	claims, err := s.parseToken(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ResolveSession turns a token into the current principal. The role is read
// from the credential store on every call so an out-of-band change applies
// to live sessions.
func (s *authService) ResolveSession(ctx context.Context, token string) (*shared.Principal, error) {
	if token == "" {
		return nil, apperr.ErrAuthenticationRequired
	}

	claims, err := s.parseToken(token)
	if err != nil {
		return nil, apperr.ErrAuthenticationRequired
	}

	record, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrAuthenticationRequired
		}
		return nil, err
	}
	if record.UserID != claims.Subject {
		return nil, apperr.ErrAuthenticationRequired
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// account removed out-of-band; drop every session it still holds
			if derr := s.sessions.DeleteByUser(ctx, record.UserID); derr != nil {
				s.log.Warn("failed to clear sessions of deleted user", "user_id", record.UserID, "error", derr)
			}
			return nil, apperr.ErrAuthenticationRequired
		}
		return nil, err
	}

	return &shared.Principal{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		SessionID: record.ID,
	}, nil
}

// RequireAuthenticated fails for the anonymous (nil) principal.
func RequireAuthenticated(p *shared.Principal) (*shared.Principal, error) {
	if p == nil || p.UserID == "" {
		return nil, apperr.ErrAuthenticationRequired
	}
	return p, nil
}

var roleRank = map[shared.Role]int{
	shared.RoleStandard:  1,
	shared.RoleModerator: 2,
}

// RequireRole passes when p holds role or a higher one. The anonymous
// principal is refused the same way as an insufficient role.
func RequireRole(p *shared.Principal, role shared.Role) (*shared.Principal, error) {
	if p == nil || p.UserID == "" {
		return nil, apperr.ErrForbidden
	}
	if roleRank[p.Role] < roleRank[role] {
		return nil, apperr.ErrForbidden
	}
	return p, nil
}
