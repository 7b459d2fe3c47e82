// 文件路径: internal/service/auth.go
// 模块说明: 单一共享令牌的生命周期：初始化、校验、修改。
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zhousiru/clashub/internal/repository"
)

// MinTokenLength is the shortest accepted token.
const MinTokenLength = 6

// AuthService coordinates the shared-secret token.
type AuthService interface {
	// VerifyToken never fails; store errors are logged and read as false.
	VerifyToken(ctx context.Context, candidate string) bool
	SetToken(ctx context.Context, token string) error
	HasToken(ctx context.Context) (bool, error)
	ChangeToken(ctx context.Context, current, next string) error
	InitializeToken(ctx context.Context, token string) error
}

type authService struct {
	tokens repository.TokenRepository
	logger *slog.Logger
}

// NewAuthService wires the token repository.
func NewAuthService(tokens repository.TokenRepository, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{tokens: tokens, logger: logger}
}

func (s *authService) VerifyToken(ctx context.Context, candidate string) bool {
	if candidate == "" {
		return false
	}
	ok, err := s.tokens.Verify(ctx, candidate)
	if err != nil {
		s.logger.Error("verify token failed", "error", err)
		return false
	}
	return ok
}

func (s *authService) SetToken(ctx context.Context, token string) error {
	if len(token) < MinTokenLength {
		return ErrInvalidToken
	}
	if err := s.tokens.Set(ctx, token); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}

func (s *authService) HasToken(ctx context.Context) (bool, error) {
	return s.tokens.Has(ctx)
}

func (s *authService) ChangeToken(ctx context.Context, current, next string) error {
	if !s.VerifyToken(ctx, current) {
		return ErrInvalidCurrentToken
	}
	return s.SetToken(ctx, next)
}

func (s *authService) InitializeToken(ctx context.Context, token string) error {
	exists, err := s.tokens.Has(ctx)
	if err != nil {
		return fmt.Errorf("check token: %w", err)
	}
	if exists {
		return ErrAlreadyInitialized
	}
	if err := s.SetToken(ctx, token); err != nil {
		return err
	}
	s.logger.Info("access token initialized")
	return nil
}

// IsValidationError reports whether err is one of the user-correctable input errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidID) || errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrInvalidToken)
}
