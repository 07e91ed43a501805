package usecase

import (
	"context"
	"fmt"
	"strings"

	"roomfinder/internal/contextkeys"
	"roomfinder/internal/contracts"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"
)

// AuthService - вход, регистрация и выход.
type AuthService struct {
	api     port.AuthAPI
	session port.SessionHolderPort
}

func NewAuthService(api port.AuthAPI, session port.SessionHolderPort) *AuthService {
	return &AuthService{api: api, session: session}
}

// Login получает токен, загружает профиль и только затем сохраняет сессию.
// Если профиль загрузить не удалось, вход считается неудачным.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (domain.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "Login",
		"email":    creds.Email,
	})
	ucLogger.Info("Use case started", nil)

	fields := make(map[string]string)
	if creds.Email == "" {
		fields["email"] = "email is required"
	}
	if creds.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return domain.User{}, domain.NewValidationError(fields)
	}

	token, err := s.api.Login(ctx, creds)
	if err != nil {
		ucLogger.Warn("Backend rejected credentials", port.Fields{"error": err.Error()})
		return domain.User{}, err
	}

	user, err := s.api.CurrentUser(ctx, token)
	if err != nil {
		ucLogger.Error("Failed to load current user", err, nil)
		return domain.User{}, err
	}

	if err := s.session.Login(ctx, token, user); err != nil {
		ucLogger.Error("Failed to persist session", err, nil)
		return domain.User{}, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"user_id": user.ID, "role": user.Role})
	return user, nil
}

// Register проверяет форму, регистрирует пользователя и сразу выполняет вход.
// Если вход после регистрации не удался, возвращается ErrLoginRequired.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Phone = strings.TrimSpace(reg.Phone)
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "Register",
		"email":    reg.Email,
		"role":     reg.Role,
	})
	ucLogger.Info("Use case started", nil)

	if err := contracts.ValidateRegistration(reg); err != nil {
		return domain.User{}, err
	}

	if err := s.api.Register(ctx, reg); err != nil {
		ucLogger.Warn("Backend rejected registration", port.Fields{"error": err.Error()})
		return domain.User{}, err
	}

	user, err := s.Login(ctx, domain.Credentials{Email: reg.Email, Password: reg.Password})
	if err != nil {
		ucLogger.Warn("Registered but automatic login failed", port.Fields{"error": err.Error()})
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrLoginRequired, err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"user_id": user.ID})
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}

// WhoAmI возвращает пользователя текущей сессии.
func (s *AuthService) WhoAmI() (domain.User, error) {
	user, ok := s.session.User()
	if !ok {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	return user, nil
}
