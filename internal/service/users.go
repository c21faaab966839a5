package service

import (
	"context"
	"log"
	"strings"
	"time"

	"memories/internal/auth"
	"memories/internal/config"
	"memories/internal/database"
	"memories/internal/models"
	"memories/internal/utils"
)

const invalidCredentials = "Invalid credentials"

type AuthService struct {
	store   database.Store
	tokens  *auth.TokenManager
	cfg     *config.AuthConfig
	metrics *utils.MetricsCollector
}

func NewAuthService(store database.Store, tokens *auth.TokenManager, cfg *config.AuthConfig, metrics *utils.MetricsCollector) *AuthService {
	return &AuthService{store: store, tokens: tokens, cfg: cfg, metrics: metrics}
}

// Register creates an account and returns it with a fresh token. Emails in
// the configured admin list get the admin role.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	defer s.observe("auth.register", time.Now())

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", utils.NewInvalidInputError("name, email and password are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", utils.NewAppError("HASH_ERROR", "failed to hash password", err)
	}

	role := models.RoleUser
	if s.cfg.IsAdminEmail(email) {
		role = models.RoleAdmin
	}

	user := &models.User{
		Name:           name,
		Email:          email,
		HashedPassword: hash,
		Role:           role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}
	log.Printf("Registered user %s with role %s", user.ID, user.Role)

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks credentials. Unknown emails and wrong passwords get the same
// error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	defer s.observe("auth.login", time.Now())

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return nil, "", utils.NewAppError(utils.ErrInvalidCredentials, invalidCredentials, nil)
		}
		return nil, "", err
	}
	if !auth.CheckPassword(user.HashedPassword, password) {
		return nil, "", utils.NewAppError(utils.ErrInvalidCredentials, invalidCredentials, nil)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Me loads the profile of the authenticated caller.
func (s *AuthService) Me(ctx context.Context, caller auth.Identity) (*models.User, error) {
	return s.store.GetUser(ctx, caller.UserID)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	defer s.observe("admin.users", time.Now())
	return s.store.ListUsers(ctx)
}

func (s *AuthService) issue(user *models.User) (string, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", utils.NewAppError("TOKEN_ERROR", "failed to issue token", err)
	}
	return token, nil
}

func (s *AuthService) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.AddOperationLatency(op, time.Since(start))
	}
}
