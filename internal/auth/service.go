package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/config"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Permission string

const (
	PermViewer   Permission = "viewer"
	PermOperator Permission = "operator"
	PermAdmin    Permission = "admin"
)

type AuthService struct {
	operators      map[string]config.OperatorConfig
	jwtHandler     *JWTHandler
	passwordHasher *PasswordHasher
	logger         *zap.Logger
}

func NewAuthService(cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	operators := make(map[string]config.OperatorConfig, len(cfg.Operators))
	for _, op := range cfg.Operators {
		operators[op.Username] = op
	}

	return &AuthService{
		operators:      operators,
		jwtHandler:     NewJWTHandler(cfg.GetJWTSecret(), cfg.AccessTokenTTL),
		passwordHasher: NewPasswordHasher(),
		logger:         logger,
	}
}

// Login verifies an operator's password and issues an access token.
func (a *AuthService) Login(username, password, ipAddress string) (string, time.Time, error) {
	op, ok := a.operators[username]
	if !ok {
		a.logger.Warn("Login failed", zap.String("username", username),
			zap.String("ip", ipAddress), zap.String("reason", "unknown user"))
		return "", time.Time{}, ErrInvalidCredentials
	}

	valid, err := a.passwordHasher.VerifyPassword(password, op.PasswordHash)
	if err != nil || !valid {
		a.logger.Warn("Login failed", zap.String("username", username),
			zap.String("ip", ipAddress), zap.String("reason", "invalid password"), zap.Error(err))
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := a.jwtHandler.GenerateAccessToken(op.Username, op.Role)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	a.logger.Info("Login succeeded", zap.String("username", username), zap.String("role", op.Role))
	return token, expiresAt, nil
}

// ValidateToken returns the claims and permissions of a valid access token.
func (a *AuthService) ValidateToken(token string) (*JWTClaims, []Permission, error) {
	claims, err := a.jwtHandler.ValidateAccessToken(token)
	if err != nil {
		return nil, nil, err
	}
	return claims, RoleToPermissions(claims.Role), nil
}

func RoleToPermissions(role string) []Permission {
	switch role {
	case "admin":
		return []Permission{PermViewer, PermOperator, PermAdmin}
	case "operator":
		return []Permission{PermViewer, PermOperator}
	default:
		return []Permission{PermViewer}
	}
}
