package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/data/repos/testutil"
	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
	"github.com/selahstudy/academy-backend/internal/services"
)

func newAuth(t *testing.T, refreshTTL time.Duration) (services.AuthService, *gorm.DB) {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	auth := services.NewAuthService(
		gdb, log,
		repos.NewUserRepo(gdb, log),
		repos.NewUserTokenRepo(gdb, log),
		"test-secret",
		time.Minute,
		refreshTTL,
	)
	return auth, gdb
}

func register(t *testing.T, auth services.AuthService, email, role string) *domain.User {
	t.Helper()
	user, err := auth.Register(context.Background(), services.RegisterInput{
		Email:     email,
		Password:  "correct horse",
		FirstName: "A",
		LastName:  "B",
		Role:      role,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newAuth(t, time.Hour)
	ctx := context.Background()

	if _, err := auth.Register(ctx, services.RegisterInput{Email: "nope", Password: "longenough"}); !apperr.IsInvalid(err) {
		t.Fatalf("bad email should be invalid, got %v", err)
	}
	if _, err := auth.Register(ctx, services.RegisterInput{Email: "a@b.com", Password: "short"}); !apperr.IsInvalid(err) {
		t.Fatalf("short password should be invalid, got %v", err)
	}
	if _, err := auth.Register(ctx, services.RegisterInput{Email: "a@b.com", Password: "longenough", Role: domain.RoleAdmin}); !apperr.IsInvalid(err) {
		t.Fatalf("self-registered admin should be invalid, got %v", err)
	}

	user := register(t, auth, "Mixed.Case@Example.COM", "")
	if user.Email != "mixed.case@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Role != domain.RoleStudent {
		t.Fatalf("default role should be student, got %q", user.Role)
	}
	if user.Password == "correct horse" {
		t.Fatal("password stored in clear")
	}

	if _, err := auth.Register(ctx, services.RegisterInput{Email: "mixed.case@example.com", Password: "longenough"}); !apperr.IsConflict(err) {
		t.Fatalf("duplicate email should conflict, got %v", err)
	}
}

func TestLoginIssuesAndRotatesTokens(t *testing.T) {
	auth, gdb := newAuth(t, time.Hour)
	ctx := context.Background()

	user := register(t, auth, "t@example.com", domain.RoleTeacher)

	if _, _, err := auth.Login(ctx, "t@example.com", "wrong password"); !apperr.IsForbidden(err) {
		t.Fatalf("wrong password should be forbidden, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "ghost@example.com", "correct horse"); !apperr.IsForbidden(err) {
		t.Fatalf("unknown email should be forbidden, got %v", err)
	}

	_, first, err := auth.Login(ctx, "t@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	_, second, err := auth.Login(ctx, "T@example.com", "correct horse")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	// A fresh login revokes the earlier session's refresh token.
	if _, err := auth.Refresh(ctx, first.RefreshToken); !apperr.IsForbidden(err) {
		t.Fatalf("revoked refresh token should be forbidden, got %v", err)
	}

	claims, err := auth.ParseAccessToken(second.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Subject != user.ID.String() || claims.Role != domain.RoleTeacher {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	var count int64
	if err := gdb.Table("user_tokens").Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 1 {
		t.Fatalf("want exactly one live refresh token, got %d", count)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	auth, _ := newAuth(t, time.Hour)
	ctx := context.Background()

	register(t, auth, "r@example.com", domain.RoleStudent)
	_, pair, err := auth.Login(ctx, "r@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := auth.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// The old token died with the rotation.
	if _, err := auth.Refresh(ctx, pair.RefreshToken); !apperr.IsForbidden(err) {
		t.Fatalf("replayed refresh token should be forbidden, got %v", err)
	}
	if _, err := auth.Refresh(ctx, next.RefreshToken); err != nil {
		t.Fatalf("rotated token should still work: %v", err)
	}

	if _, err := auth.Refresh(ctx, ""); !apperr.IsInvalid(err) {
		t.Fatalf("empty refresh token should be invalid, got %v", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	auth, gdb := newAuth(t, -time.Minute)
	ctx := context.Background()

	user := register(t, auth, "e@example.com", domain.RoleStudent)
	_, pair, err := auth.Login(ctx, "e@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := auth.Refresh(ctx, pair.RefreshToken); !apperr.IsForbidden(err) {
		t.Fatalf("expired refresh token should be forbidden, got %v", err)
	}

	// Expired rows are purged on sight.
	var count int64
	if err := gdb.Table("user_tokens").Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 0 {
		t.Fatalf("expired token should be deleted, got %d rows", count)
	}
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	auth, _ := newAuth(t, time.Hour)
	ctx := context.Background()

	user := register(t, auth, "l@example.com", domain.RoleStudent)
	_, pair, err := auth.Login(ctx, "l@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := auth.Logout(ctx, user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := auth.Refresh(ctx, pair.RefreshToken); !apperr.IsForbidden(err) {
		t.Fatalf("post-logout refresh should be forbidden, got %v", err)
	}
}

func TestParseAccessTokenRejectsForgeries(t *testing.T) {
	auth, _ := newAuth(t, time.Hour)
	ctx := context.Background()

	register(t, auth, "p@example.com", domain.RoleStudent)
	_, pair, err := auth.Login(ctx, "p@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := auth.ParseAccessToken("not-a-jwt"); !apperr.IsForbidden(err) {
		t.Fatalf("garbage token should be forbidden, got %v", err)
	}

	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	if _, err := auth.ParseAccessToken(tampered); !apperr.IsForbidden(err) {
		t.Fatalf("tampered token should be forbidden, got %v", err)
	}

	claims, err := auth.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		t.Fatalf("subject should be a uuid: %v", err)
	}
}
