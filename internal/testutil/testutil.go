package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ivkov/toolshelf/internal/auth"
	"github.com/ivkov/toolshelf/internal/database/models"
	"github.com/ivkov/toolshelf/pkg/crypto"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword is the password of every user created by CreateTestUser.
const TestPassword = "testpassword123"

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.SessionToken{},
		&models.Category{},
		&models.Role{},
		&models.Tool{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CreateTestUser creates a user with the given role and a known password.
func CreateTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Name:         "Test User",
		Role:         role,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestCategory creates a category with the given name.
func CreateTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Base: models.Base{ID: uuid.New()}, Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestRole creates a catalogue role with the given name.
func CreateTestRole(t *testing.T, db *gorm.DB, name string) *models.Role {
	t.Helper()

	role := &models.Role{Base: models.Base{ID: uuid.New()}, Name: name}
	if err := db.Create(role).Error; err != nil {
		t.Fatalf("failed to create test role: %v", err)
	}
	return role
}

// CreateTestTool creates a tool owned by the given user (may be nil).
func CreateTestTool(t *testing.T, db *gorm.DB, name string, user *models.User) *models.Tool {
	t.Helper()

	tool := &models.Tool{
		Base:   models.Base{ID: uuid.New()},
		Name:   name,
		Status: models.ToolStatusPending,
	}
	if user != nil {
		tool.UserID = &user.ID
	}
	if err := db.Create(tool).Error; err != nil {
		t.Fatalf("failed to create test tool: %v", err)
	}
	return tool
}

// CodeRecorder is an auth.Notifier that captures dispatched codes instead of
// sending mail. Setting Err makes every dispatch fail.
type CodeRecorder struct {
	mu        sync.Mutex
	Err       error
	LastEmail string
	LastName  string
	LastCode  string
	Sent      int
}

func (r *CodeRecorder) SendTwoFactorCode(ctx context.Context, email, name, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.LastEmail = email
	r.LastName = name
	r.LastCode = code
	r.Sent++
	return nil
}

var _ auth.Notifier = (*CodeRecorder)(nil)

// FakeClock is a settable time source for expiry tests.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{t: t}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// TestSetup holds the common test dependencies.
type TestSetup struct {
	DB        *gorm.DB
	Tokens    *auth.TokenService
	Encryptor *crypto.Encryptor
	Notifier  *CodeRecorder
	Clock     *FakeClock
	Auth      *auth.Service
	Owner     *models.User
	Token     string
}

// NewTestContext creates a complete test setup: DB, token service, encryptor,
// code recorder, fixed clock, auth service, and an owner user with a valid
// session token.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	tokens := auth.NewTokenService(db)

	encryptor, err := crypto.NewEncryptor("")
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}

	notifier := &CodeRecorder{}
	clock := NewFakeClock(time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC))

	authService := auth.NewService(db, tokens, encryptor, notifier, NewTestLogger(), 0).
		WithClock(clock.Now)

	owner := CreateTestUser(t, db, "owner")
	token, err := tokens.Issue(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("failed to issue test token: %v", err)
	}

	return &TestSetup{
		DB:        db,
		Tokens:    tokens,
		Encryptor: encryptor,
		Notifier:  notifier,
		Clock:     clock,
		Auth:      authService,
		Owner:     owner,
		Token:     token,
	}
}

// Cleanup closes the test database.
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// AuthenticatedRequest creates an HTTP request with a bearer token.
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication.
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}
