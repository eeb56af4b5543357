package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tandikan/enroll/internal/models"
)

// AuthService handles the credential lifecycle. Login and Register store the
// issued token in the session; Logout clears it. Callers must serialize auth
// calls: concurrent logins race last-write-wins on the session.
type AuthService struct {
	gw        apiGateway
	session   credentialStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(gw apiGateway, session credentialStore, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{gw: gw, session: session, validator: validate, logger: logger}
}

// Login authenticates and stores the issued token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	var res models.AuthResponse
	if err := s.gw.Post(ctx, "/auth/login/", req, &res); err != nil {
		return nil, err
	}
	s.session.SetToken(res.Token)
	s.logger.Info("logged in", zap.String("email", res.User.Email), zap.String("role", string(res.User.Role)))
	return &res, nil
}

// Register creates an account and stores the issued token.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	var res models.AuthResponse
	if err := s.gw.Post(ctx, "/auth/register/", req, &res); err != nil {
		return nil, err
	}
	s.session.SetToken(res.Token)
	return &res, nil
}

// Logout revokes the session server-side and clears the local credential.
// The local credential is dropped even when the wire call fails; a dead
// token is worthless either way.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.gw.Post(ctx, "/auth/logout/", struct{}{}, nil)
	s.session.ClearToken()
	if err != nil {
		s.logger.Warn("server-side logout failed, local credential cleared", zap.Error(err))
	}
	return err
}

// CurrentUser fetches the authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.gw.Get(ctx, "/auth/me/", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RefreshToken exchanges the current credential for a fresh one and stores it.
func (s *AuthService) RefreshToken(ctx context.Context) (*models.TokenResponse, error) {
	var res models.TokenResponse
	if err := s.gw.Post(ctx, "/auth/refresh/", struct{}{}, &res); err != nil {
		return nil, err
	}
	s.session.SetToken(res.Token)
	return &res, nil
}
