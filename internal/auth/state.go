package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// stateTTL bounds how long a login may sit on the provider's consent page
const stateTTL = 10 * time.Minute

var ErrInvalidState = errors.New("invalid or expired state token")

type StateEntry struct {
	CreatedAt time.Time `json:"created_at"`
	Provider  string    `json:"provider"`
	UserAgent string    `json:"user_agent"`
}

// StateStore issues one-time OAuth state tokens
type StateStore interface {
	Generate(ctx context.Context, provider, userAgent string) (string, error)
	Validate(ctx context.Context, state, provider, userAgent string) (StateEntry, error)
}

func newStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func checkEntry(entry StateEntry, provider, userAgent string, logger *slog.Logger) error {
	if time.Since(entry.CreatedAt) > stateTTL {
		logger.Warn("Expired state token", "age_minutes", time.Since(entry.CreatedAt).Minutes())
		return ErrInvalidState
	}
	if entry.Provider != provider {
		logger.Warn("State token provider mismatch",
			"expected_provider", entry.Provider,
			"received_provider", provider)
		return fmt.Errorf("state token provider mismatch")
	}
	if entry.UserAgent != userAgent {
		logger.Warn("State token user agent mismatch",
			"stored_user_agent", entry.UserAgent,
			"received_user_agent", userAgent)
	}
	return nil
}

// MemoryStateStore keeps state tokens in process. Suitable for one replica.
type MemoryStateStore struct {
	states map[string]StateEntry
	mutex  sync.Mutex
	now    func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		states: make(map[string]StateEntry),
		now:    time.Now,
	}
}

func (sm *MemoryStateStore) Generate(ctx context.Context, provider, userAgent string) (string, error) {
	logger := slog.With("component", "state_store", "operation", "generate", "provider", provider)

	state, err := newStateToken()
	if err != nil {
		logger.Error("Failed to generate state token", "error", err)
		return "", err
	}

	sm.mutex.Lock()
	sm.states[state] = StateEntry{
		CreatedAt: sm.now(),
		Provider:  provider,
		UserAgent: userAgent,
	}
	sm.mutex.Unlock()

	logger.Debug("OAuth state token generated and stored")
	return state, nil
}

// Validate consumes the token; a second call with the same state fails
func (sm *MemoryStateStore) Validate(ctx context.Context, state, provider, userAgent string) (StateEntry, error) {
	logger := slog.With("component", "state_store", "operation", "validate", "provider", provider)

	if state == "" {
		return StateEntry{}, fmt.Errorf("state token is required")
	}

	sm.mutex.Lock()
	entry, exists := sm.states[state]
	delete(sm.states, state)
	sm.mutex.Unlock()

	if !exists {
		logger.Warn("Unknown state token")
		return StateEntry{}, ErrInvalidState
	}
	return entry, checkEntry(entry, provider, userAgent, logger)
}

// StartCleanup drops expired tokens every interval until ctx is done
func (sm *MemoryStateStore) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sm.cleanupExpiredStates()
		}
	}
}

func (sm *MemoryStateStore) cleanupExpiredStates() int {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	expired := 0
	for state, entry := range sm.states {
		if sm.now().Sub(entry.CreatedAt) > stateTTL {
			delete(sm.states, state)
			expired++
		}
	}

	if expired > 0 {
		slog.Debug("Cleaned up expired state tokens",
			"component", "state_store",
			"expired_count", expired,
			"remaining_count", len(sm.states))
	}
	return expired
}

// RedisStateStore shares state tokens between replicas
type RedisStateStore struct {
	client redis.Cmdable
}

func NewRedisStateStore(client redis.Cmdable) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func stateKey(state string) string {
	return "oauth:state:" + state
}

func (rs *RedisStateStore) Generate(ctx context.Context, provider, userAgent string) (string, error) {
	state, err := newStateToken()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(StateEntry{CreatedAt: time.Now(), Provider: provider, UserAgent: userAgent})
	if err != nil {
		return "", fmt.Errorf("failed to encode state entry: %w", err)
	}
	if err := rs.client.Set(ctx, stateKey(state), data, stateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store state token: %w", err)
	}
	return state, nil
}

func (rs *RedisStateStore) Validate(ctx context.Context, state, provider, userAgent string) (StateEntry, error) {
	logger := slog.With("component", "state_store", "operation", "validate", "provider", provider, "backend", "redis")

	if state == "" {
		return StateEntry{}, fmt.Errorf("state token is required")
	}

	data, err := rs.client.GetDel(ctx, stateKey(state)).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.Warn("Unknown state token")
		return StateEntry{}, ErrInvalidState
	}
	if err != nil {
		return StateEntry{}, fmt.Errorf("failed to read state token: %w", err)
	}

	var entry StateEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return StateEntry{}, fmt.Errorf("malformed state entry: %w", err)
	}
	return entry, checkEntry(entry, provider, userAgent, logger)
}
