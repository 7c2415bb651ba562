package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/emanuel-malungo/jomorais/internal/dto"
	"github.com/emanuel-malungo/jomorais/internal/model"
	"github.com/emanuel-malungo/jomorais/internal/repository"
	apperrors "github.com/emanuel-malungo/jomorais/pkg/errors"
	"github.com/emanuel-malungo/jomorais/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("email ou palavra-passe incorrectos")
	ErrUserInactive       = errors.New("utilizador desactivado")
)

// TokenRevoker records logged-out tokens until they expire. Implemented by
// pkg/redis; nil when Redis is not configured.
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService login, logout and current-user lookups.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, remaining time.Duration) error
	GetCurrentUser(ctx context.Context, userID int64) (*dto.UserResponse, error)
}

type authService struct {
	repo    *repository.Repository
	jwtMgr  *jwt.Manager
	revoker TokenRevoker
	logger  *zap.Logger
}

// NewAuthService creates the AuthService. revoker may be nil.
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, revoker TokenRevoker, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, revoker: revoker, logger: logger}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.Utilizador.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("lookup user failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrUserInactive
	}

	token, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Email, user.Perfil)
	if err != nil {
		s.logger.Error("issue token failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
		User:        toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, remaining time.Duration) error {
	if s.revoker == nil || jti == "" {
		return nil
	}
	if err := s.revoker.BlacklistToken(ctx, jti, remaining); err != nil {
		s.logger.Error("revoke token failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.repo.Utilizador.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.logger.Error("get current user failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func toUserResponse(u *model.Utilizador) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Nome: u.Nome, Email: u.Email, Perfil: u.Perfil}
}

// BootstrapAdmin creates the first administrator when no user exists yet.
// It is a no-op when email is empty or the table already has rows.
func BootstrapAdmin(ctx context.Context, repo *repository.Repository, email, password string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}
	_, total, err := repo.Utilizador.List(ctx, repository.ListQuery{Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	if len(password) < 8 {
		return errors.New("bootstrap password must have at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.Utilizador{
		BaseModel:    model.BaseModel{Status: model.StatusActivo},
		Nome:         "Administrador",
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Perfil:       model.PerfilAdmin,
		PasswordHash: string(hash),
	}
	if err := repo.Utilizador.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("bootstrap administrator created", zap.String("email", admin.Email))
	return nil
}
