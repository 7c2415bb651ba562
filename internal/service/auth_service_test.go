package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/emanuel-malungo/jomorais/config"
	"github.com/emanuel-malungo/jomorais/internal/dto"
	"github.com/emanuel-malungo/jomorais/internal/model"
	apperrors "github.com/emanuel-malungo/jomorais/pkg/errors"
	"github.com/emanuel-malungo/jomorais/pkg/jwt"
)

// ── test helpers ──

type fakeRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func (f *fakeRevoker) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.revoked[jti] = ttl
	return nil
}

func setupTestAuthService() (AuthService, *mockRepos, *jwt.Manager, *fakeRevoker) {
	cfg := &config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
	}
	repo, mocks := newMockRepository()
	jwtMgr := jwt.NewManager(cfg)
	revoker := &fakeRevoker{revoked: make(map[string]time.Duration)}

	svc := NewAuthService(repo, jwtMgr, revoker, zap.NewNop())
	return svc, mocks, jwtMgr, revoker
}

func createTestUser(mocks *mockRepos, email, password string, status model.Status) *model.Utilizador {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return mocks.utilizador.seed(model.Utilizador{
		BaseModel:    model.BaseModel{Status: status},
		Nome:         "Secretaria Geral",
		Email:        email,
		Perfil:       model.PerfilSecretaria,
		PasswordHash: string(hash),
	})
}

// ── Login ──

func TestLogin_Success(t *testing.T) {
	svc, mocks, jwtMgr, _ := setupTestAuthService()
	user := createTestUser(mocks, "secretaria@jomorais.ao", "password123", model.StatusActivo)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "secretaria@jomorais.ao",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ExpiresIn != 900 {
		t.Errorf("expected expires_in 900, got %d", resp.ExpiresIn)
	}
	if resp.User.ID != user.ID || resp.User.Perfil != model.PerfilSecretaria {
		t.Errorf("unexpected user %+v", resp.User)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	createTestUser(mocks, "secretaria@jomorais.ao", "password123", model.StatusActivo)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "secretaria@jomorais.ao", Password: "errada"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "ninguem@jomorais.ao", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	createTestUser(mocks, "antigo@jomorais.ao", "password123", model.StatusInactivo)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "antigo@jomorais.ao", Password: "password123"})
	if !errors.Is(err, ErrUserInactive) {
		t.Errorf("expected ErrUserInactive, got %v", err)
	}
}

// ── Logout ──

func TestLogout_RevokesToken(t *testing.T) {
	svc, _, _, revoker := setupTestAuthService()

	if err := svc.Logout(context.Background(), "jti-1", 10*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if revoker.revoked["jti-1"] != 10*time.Minute {
		t.Errorf("token not revoked with its remaining lifetime: %v", revoker.revoked)
	}
}

func TestLogout_RevokerFailure(t *testing.T) {
	svc, _, _, revoker := setupTestAuthService()
	revoker.err = errors.New("redis down")

	if err := svc.Logout(context.Background(), "jti-1", time.Minute); err == nil {
		t.Error("expected the revoker error to surface")
	}
}

func TestLogout_WithoutRevoker(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewAuthService(repo, jwt.NewManager(&config.AuthConfig{JWTSecret: "x", AccessTokenTTL: time.Minute}), nil, zap.NewNop())

	if err := svc.Logout(context.Background(), "jti-1", time.Minute); err != nil {
		t.Errorf("logout without redis must succeed, got %v", err)
	}
}

// ── GetCurrentUser ──

func TestGetCurrentUser(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	user := createTestUser(mocks, "admin@jomorais.ao", "password123", model.StatusActivo)

	resp, err := svc.GetCurrentUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Email != "admin@jomorais.ao" {
		t.Errorf("unexpected email %q", resp.Email)
	}

	_, err = svc.GetCurrentUser(context.Background(), 999)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ── BootstrapAdmin ──

func TestBootstrapAdmin(t *testing.T) {
	repo, mocks := newMockRepository()

	if err := BootstrapAdmin(context.Background(), repo, "Admin@Jomorais.ao", "password123", zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mocks.utilizador.rows) != 1 {
		t.Fatalf("expected one administrator, got %d users", len(mocks.utilizador.rows))
	}
	admin := mocks.utilizador.rows[1]
	if admin.Email != "admin@jomorais.ao" || admin.Perfil != model.PerfilAdmin {
		t.Errorf("unexpected administrator %+v", admin)
	}

	// second run is a no-op
	if err := BootstrapAdmin(context.Background(), repo, "outro@jomorais.ao", "password123", zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mocks.utilizador.rows) != 1 {
		t.Errorf("bootstrap must not run when users exist")
	}
}

func TestBootstrapAdmin_ShortPassword(t *testing.T) {
	repo, _ := newMockRepository()

	if err := BootstrapAdmin(context.Background(), repo, "admin@jomorais.ao", "curta", zap.NewNop()); err == nil {
		t.Error("expected an error for a short password")
	}
}
