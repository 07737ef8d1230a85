package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ivkov/toolshelf/internal/database/models"
	"github.com/ivkov/toolshelf/pkg/crypto"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUnknownRole        = errors.New("unknown role")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrChallengeExpired   = errors.New("two-factor code expired or not set")
	ErrInvalidCode        = errors.New("invalid two-factor code")
)

// DefaultTwoFactorTTL is how long a one-time code stays valid.
const DefaultTwoFactorTTL = 10 * time.Minute

// Service implements the login flow: password check, one-time code challenge,
// code verification, session token issuance.
type Service struct {
	db        *gorm.DB
	tokens    *TokenService
	encryptor *crypto.Encryptor
	notifier  Notifier
	logger    *slog.Logger
	ttl       time.Duration
	now       func() time.Time
}

func NewService(db *gorm.DB, tokens *TokenService, encryptor *crypto.Encryptor, notifier Notifier, logger *slog.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTwoFactorTTL
	}
	return &Service{
		db:        db,
		tokens:    tokens,
		encryptor: encryptor,
		notifier:  notifier,
		logger:    logger,
		ttl:       ttl,
		now:       time.Now,
	}
}

// WithClock overrides the service's time source. Expiry logic is tested with a
// fixed clock instead of sleeps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string // optional; must name an entry in the roles catalogue
}

type LoginInput struct {
	Email    string
	Password string
}

type VerifyInput struct {
	UserID uuid.UUID
	Code   string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Challenge is the "verification required" outcome of a successful password
// check. It deliberately never carries the code itself.
type Challenge struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	role := input.Role
	if role == "" {
		role = "user"
	} else {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Role{}).Where("name = ?", role).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrUnknownRole
		}
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         role,
	}

	var token string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		token, err = s.tokens.issue(tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

// Login checks credentials and, on success, attaches a fresh one-time code
// challenge to the user and dispatches the code by email. Any previously
// pending challenge is overwritten; only one is live per user at a time.
// "No such user" and "wrong password" are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (*Challenge, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	code, err := crypto.GenerateNumericCode()
	if err != nil {
		return nil, err
	}

	encrypted, err := s.encryptor.EncryptString(code)
	if err != nil {
		return nil, fmt.Errorf("encrypting code: %w", err)
	}

	expiry := s.now().Add(s.ttl)
	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"two_factor_secret":     encrypted,
		"two_factor_expires_at": expiry,
	}).Error
	if err != nil {
		return nil, err
	}

	// The challenge is persisted before dispatch; a delivery failure is logged
	// and not surfaced to the client, who still gets the 202. The user can
	// retry the login to trigger a fresh code.
	if err := s.notifier.SendTwoFactorCode(ctx, user.Email, user.Name, code); err != nil {
		s.logger.Warn("failed to dispatch two-factor code",
			"user_id", user.ID,
			"error", err,
		)
	}

	return &Challenge{UserID: user.ID, Email: user.Email}, nil
}

// Verify checks a submitted one-time code against the user's pending
// challenge. On success it consumes the challenge and issues a session token.
// Which of "no challenge", "missing expiry", or "expired" applied is not
// revealed. An expired challenge is cleared as a side effect of the check.
func (s *Service) Verify(ctx context.Context, input VerifyInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := s.now()
	if !user.HasPendingChallenge() || now.After(*user.TwoFactorExpiresAt) {
		if user.HasPendingChallenge() {
			if err := s.clearChallenge(s.db.WithContext(ctx), &user); err != nil {
				s.logger.Warn("failed to clear expired challenge", "user_id", user.ID, "error", err)
			}
		}
		return nil, ErrChallengeExpired
	}

	code, err := s.encryptor.DecryptString(*user.TwoFactorSecret)
	if err != nil {
		return nil, fmt.Errorf("decrypting code: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(input.Code)) != 1 {
		// The challenge stays in place; the user may retry until expiry.
		return nil, ErrInvalidCode
	}

	var token string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.clearChallenge(tx, &user); err != nil {
			return err
		}
		token, err = s.tokens.issue(tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

func (s *Service) clearChallenge(tx *gorm.DB, user *models.User) error {
	if err := tx.Model(user).Updates(map[string]interface{}{
		"two_factor_secret":     nil,
		"two_factor_expires_at": nil,
	}).Error; err != nil {
		return err
	}
	user.TwoFactorSecret = nil
	user.TwoFactorExpiresAt = nil
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
