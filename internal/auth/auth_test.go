package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"galaxy-server/internal/shared/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setConfig(secret string) {
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			Enabled:         true,
			JWTSecret:       secret,
			TokenExpiration: time.Hour,
			OperatorLogins:  []string{"octocat"},
		},
	}
}

func TestJWTRoundTrip(t *testing.T) {
	setConfig("0123456789abcdef0123456789abcdef")

	token, err := GenerateJWT("octocat", RoleFor("octocat"))
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Login != "octocat" || !claims.IsOperator() || claims.Subject != "github:octocat" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTRejectsOtherSecret(t *testing.T) {
	setConfig("0123456789abcdef0123456789abcdef")
	token, err := GenerateJWT("someone", RoleViewer)
	if err != nil {
		t.Fatal(err)
	}

	setConfig("fedcba9876543210fedcba9876543210")
	if _, err := ValidateJWT(token); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestJWTRequiresLongSecret(t *testing.T) {
	setConfig("short")
	if _, err := GenerateJWT("octocat", RoleOperator); err == nil {
		t.Error("short secret accepted")
	}
}

func TestRoleFor(t *testing.T) {
	setConfig("0123456789abcdef0123456789abcdef")
	if RoleFor("octocat") != RoleOperator || RoleFor("hubot") != RoleViewer {
		t.Error("roles not derived from the operator allowlist")
	}
	var nilClaims *Claims
	if nilClaims.IsOperator() {
		t.Error("nil claims are not an operator")
	}
}

func TestMemoryStateStore(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	state, err := store.Generate(ctx, "github", "agent")
	if err != nil {
		t.Fatal(err)
	}

	entry, err := store.Validate(ctx, state, "github", "agent")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Provider != "github" {
		t.Errorf("entry = %+v", entry)
	}

	if _, err := store.Validate(ctx, state, "github", "agent"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("state reused: %v", err)
	}
	if _, err := store.Validate(ctx, "", "github", "agent"); err == nil {
		t.Error("empty state accepted")
	}
}

func TestMemoryStateStoreMismatchAndExpiry(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	state, _ := store.Generate(ctx, "github", "agent")
	if _, err := store.Validate(ctx, state, "gitlab", "agent"); err == nil {
		t.Error("provider mismatch accepted")
	}

	now := time.Now()
	store.now = func() time.Time { return now.Add(-time.Hour) }
	old, _ := store.Generate(ctx, "github", "agent")
	_, _ = store.Generate(ctx, "github", "agent")

	store.now = func() time.Time { return now }
	if n := store.cleanupExpiredStates(); n != 2 {
		t.Errorf("cleaned %d tokens, want 2", n)
	}
	if _, err := store.Validate(ctx, old, "github", "agent"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expired state accepted: %v", err)
	}
}

func TestStateKey(t *testing.T) {
	if got := stateKey("abc"); got != "oauth:state:abc" {
		t.Errorf("stateKey() = %q", got)
	}
}

func TestRedisStateStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStateStore(client)
	ctx := context.Background()

	state, err := store.Generate(ctx, "github", "agent")
	if err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(stateKey(state)); ttl != stateTTL {
		t.Errorf("ttl = %v, want %v", ttl, stateTTL)
	}

	entry, err := store.Validate(ctx, state, "github", "agent")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Provider != "github" || entry.UserAgent != "agent" {
		t.Errorf("entry = %+v", entry)
	}
	if mr.Exists(stateKey(state)) {
		t.Error("state still stored after validation")
	}

	if _, err := store.Validate(ctx, state, "github", "agent"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("state reused: %v", err)
	}
	if _, err := store.Validate(ctx, "", "github", "agent"); err == nil {
		t.Error("empty state accepted")
	}
}

func TestRedisStateStoreExpiryAndMismatch(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStateStore(client)
	ctx := context.Background()

	expired, _ := store.Generate(ctx, "github", "agent")
	mr.FastForward(stateTTL + time.Second)
	if _, err := store.Validate(ctx, expired, "github", "agent"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expired state accepted: %v", err)
	}

	state, _ := store.Generate(ctx, "github", "agent")
	if _, err := store.Validate(ctx, state, "gitlab", "agent"); err == nil {
		t.Error("provider mismatch accepted")
	}

	if err := mr.Set(stateKey("broken"), "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Validate(ctx, "broken", "github", "agent"); err == nil || errors.Is(err, ErrInvalidState) {
		t.Errorf("malformed entry: %v", err)
	}
}
