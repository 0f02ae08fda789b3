package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

func TestRegisterOpensSeekerSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "secret1", Role: "seeker"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.User.Role != domain.RoleSeeker || !result.User.Active {
		t.Fatalf("unexpected user %+v", result.User)
	}
	if result.User.PasswordHash == "secret1" {
		t.Fatal("password must be hashed")
	}
	if result.Redirect != "/dashboard/seeker" {
		t.Errorf("redirect = %q", result.Redirect)
	}
	if result.Persistent {
		t.Error("registration opens a browser session")
	}

	session, err := f.sessions.Get(ctx, sessionIDOf(t, f, result.Token))
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	if session.UserID != result.User.ID || session.Role != domain.RoleSeeker {
		t.Fatalf("unexpected session %+v", session)
	}

	got := f.dispatcher.types()
	if len(got) != 1 || got[0] != events.EventUserRegistered {
		t.Fatalf("events = %v", got)
	}
}

func sessionIDOf(t *testing.T, f *fixture, token string) string {
	t.Helper()
	claims, err := f.auth.tokens.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	return claims.SessionID()
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
	}{
		{name: "missing username", input: RegisterInput{Email: "a@x.com", Password: "secret1", Role: "seeker"}},
		{name: "missing role", input: RegisterInput{Username: "a", Email: "a@x.com", Password: "secret1"}},
		{name: "short password", input: RegisterInput{Username: "a", Email: "a@x.com", Password: "12345", Role: "seeker"}},
		{name: "admin role", input: RegisterInput{Username: "a", Email: "a@x.com", Password: "secret1", Role: "admin"}},
		{name: "unknown role", input: RegisterInput{Username: "a", Email: "a@x.com", Password: "secret1", Role: "wizard"}},
		{name: "bad email", input: RegisterInput{Username: "a", Email: "not-an-email", Password: "secret1", Role: "seeker"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.auth.Register(context.Background(), tt.input)
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if f.db.userCount() != 0 {
				t.Fatal("no account may be created")
			}
		})
	}
}

func TestRegisterPasswordLengthCountsCharacters(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), RegisterInput{Username: "zoe", Email: "zoe@x.com", Password: "ééééé", Role: "seeker"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("five characters must be rejected, got %v", err)
	}
	if _, err := f.auth.Register(context.Background(), RegisterInput{Username: "zoe", Email: "zoe@x.com", Password: "éééééé", Role: "seeker"}); err != nil {
		t.Fatalf("six characters must be accepted, got %v", err)
	}
}

func TestRegisterRejectsPasswordsBcryptWouldTruncate(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), RegisterInput{Username: "zoe", Email: "zoe@x.com", Password: strings.Repeat("a", 73), Role: "seeker"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("73 bytes must be rejected, got %v", err)
	}
	if _, err := f.auth.Register(context.Background(), RegisterInput{Username: "zoe", Email: "zoe@x.com", Password: strings.Repeat("a", 72), Role: "seeker"}); err != nil {
		t.Fatalf("72 bytes must be accepted, got %v", err)
	}
}

func TestLoginUpgradesStaleHashCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hash, err := auth.HashPassword("secret1", 5)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	user := &domain.User{Username: "legacy", Email: "legacy@x.com", PasswordHash: hash, Role: domain.RoleSeeker, Active: true}
	if err := f.users.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := f.auth.Login(ctx, LoginInput{Email: "legacy@x.com", Password: "secret1", ClientIP: "10.0.0.9"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	stored, err := f.users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if auth.NeedsRehash(stored.PasswordHash, 4) {
		t.Fatal("hash should have been re-encoded at the configured cost")
	}
	if err := auth.ComparePassword(stored.PasswordHash, "secret1"); err != nil {
		t.Fatalf("upgraded hash no longer matches: %v", err)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "secret1", Role: "seeker"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "other@x.com", Password: "secret1", Role: "employer"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("duplicate username: got %v", err)
	}
	_, err = f.auth.Register(ctx, RegisterInput{Username: "other", Email: "alice@x.com", Password: "secret1", Role: "employer"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("duplicate email: got %v", err)
	}

	// A concurrent registration slips past the lookups and hits the constraint.
	f.db.racingInsert = true
	_, err = f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "third@x.com", Password: "secret1", Role: "seeker"})
	de := apperrors.ToDomainError(err)
	if de.Code != apperrors.CodeConflict || de.Details["field"] != "username" {
		t.Fatalf("constraint violation: got %+v", de)
	}
	if f.db.userCount() != 1 {
		t.Fatalf("user count = %d", f.db.userCount())
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "secret1", Role: "seeker"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	sessionsBefore := countSessions(f)

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, LoginInput{Email: "alice@x.com", Password: "wrong", ClientIP: "10.0.0.1"})
		if !apperrors.HasCode(err, apperrors.CodeUnauthenticated) {
			t.Fatalf("got %v", err)
		}
		if got := countSessions(f); got != sessionsBefore {
			t.Fatalf("no session may be opened, have %d", got)
		}
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		_, err := f.auth.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret1", ClientIP: "10.0.0.1"})
		de := apperrors.ToDomainError(err)
		if de.Code != apperrors.CodeUnauthenticated || de.Message != "Invalid email or password." {
			t.Fatalf("got %+v", de)
		}
	})

	t.Run("remember me", func(t *testing.T) {
		result, err := f.auth.Login(ctx, LoginInput{Email: "alice@x.com", Password: "secret1", RememberMe: true, ClientIP: "10.0.0.2"})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if !result.Persistent {
			t.Fatal("remember me yields a persistent session")
		}
		if ttl := f.redis.TTL("session:" + sessionIDOf(t, f, result.Token)); ttl != 30*24*time.Hour {
			t.Fatalf("ttl = %v", ttl)
		}
	})

	t.Run("inactive account", func(t *testing.T) {
		user, _ := f.users.GetByEmail(ctx, "alice@x.com")
		if err := f.users.SetActive(ctx, user.ID, false); err != nil {
			t.Fatalf("SetActive() error = %v", err)
		}
		defer f.users.SetActive(ctx, user.ID, true) //nolint:errcheck

		_, err := f.auth.Login(ctx, LoginInput{Email: "alice@x.com", Password: "secret1", ClientIP: "10.0.0.3"})
		if !apperrors.HasCode(err, apperrors.CodeUnauthenticated) {
			t.Fatalf("got %v", err)
		}
	})
}

func countSessions(f *fixture) int {
	count := 0
	for _, key := range f.redis.Keys() {
		if strings.HasPrefix(key, "session:") {
			count++
		}
	}
	return count
}

func TestLoginRateLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.auth.Login(ctx, LoginInput{Email: "Alice@x.com", Password: "wrong", ClientIP: "10.0.0.9"})
		if !apperrors.HasCode(err, apperrors.CodeUnauthenticated) {
			t.Fatalf("attempt %d: got %v", i+1, err)
		}
	}
	_, err := f.auth.Login(ctx, LoginInput{Email: "alice@x.com", Password: "wrong", ClientIP: "10.0.0.9"})
	if !apperrors.HasCode(err, apperrors.CodeRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result, err := f.auth.Register(ctx, RegisterInput{Username: "bob", Email: "bob@x.com", Password: "secret1", Role: "employer"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	id := sessionIDOf(t, f, result.Token)

	if err := f.auth.Logout(ctx, id); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if err := f.auth.Logout(ctx, id); err != nil {
		t.Fatalf("repeated Logout() error = %v", err)
	}
	if err := f.auth.Logout(ctx, ""); err != nil {
		t.Fatalf("anonymous Logout() error = %v", err)
	}
	if countSessions(f) != 0 {
		t.Fatal("session should be gone")
	}
}
