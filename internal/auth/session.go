package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Session identifies the caller of a service operation. Every operation that
// needs identity or authorization takes one explicitly instead of reaching
// into ambient login state.
type Session struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	IsManager  bool   `json:"is_manager"`
	FirstLogin bool   `json:"first_login"`
}

// Manager issues and resolves bearer-token login sessions backed by Redis.
type Manager struct {
	store  *store.Store
	redis  *redisclient.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager creates a new session manager
func NewManager(store *store.Store, redis *redisclient.Client, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		redis:  redis,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// ErrInvalidCredentials is returned when the username or password is wrong.
var ErrInvalidCredentials = fmt.Errorf("invalid username or password")

// Login verifies credentials and issues a bearer token. The returned session
// carries the first-login flag so clients can force a password reset.
func (m *Manager) Login(ctx context.Context, username, password string) (string, *Session, error) {
	user, err := m.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		util.LoginsTotal.WithLabelValues("failure").Inc()
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		util.LoginsTotal.WithLabelValues("failure").Inc()
		return "", nil, ErrInvalidCredentials
	}

	sess := &Session{
		UserID:     user.ID,
		Username:   user.Username,
		IsManager:  user.IsManager,
		FirstLogin: user.FirstLogin,
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	token := uuid.New().String()
	if err := m.redis.SetSession(ctx, token, payload, m.ttl); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	util.LoginsTotal.WithLabelValues("success").Inc()
	m.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.Bool("is_manager", user.IsManager))

	return token, sess, nil
}

// Resolve looks up the session for a bearer token; nil when unknown or expired.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	payload, err := m.redis.GetSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if payload == nil {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Logout revokes a bearer token
func (m *Manager) Logout(ctx context.Context, token string) error {
	return m.redis.DeleteSession(ctx, token)
}

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
