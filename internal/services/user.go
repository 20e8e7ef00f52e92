package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

type userUSStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// tokenIssuer mints sign-in tokens for authenticated accounts.
type tokenIssuer interface {
	CustomToken(ctx context.Context, uid string) (string, error)
}

type userService struct {
	Store  userUSStore
	Tokens tokenIssuer
	admins map[string]bool
	cost   int
}

// NewUserService builds the account service. Accounts registered with one of
// adminEmails get the admin role; nobody else can claim it.
func NewUserService(store userUSStore, tokens tokenIssuer, adminEmails []string) *userService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &userService{
		Store:  store,
		Tokens: tokens,
		admins: admins,
		cost:   bcrypt.DefaultCost,
	}
}

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	log := logger.FromContext(ctx)

	email := normalizeEmail(req.Email)
	role, err := s.registrationRole(email, req.Role)
	if err != nil {
		log.Warn("registration with reserved role refused", "email", email, "role", req.Role)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &models.User{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Name:         strings.TrimSpace(req.Name),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
		LastLogin:    now,
	}

	if err := s.Store.CreateUser(ctx, user); err != nil {
		log.Warn("failed to register user", "error", err)
		return nil, err
	}

	log.Info("user registered", "uid", user.UID, "role", user.Role)
	return user, nil
}

func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	log := logger.FromContext(ctx)

	user, err := s.Store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			return dto.LoginResponse{}, errs.NewNotFoundError("user not found, please register first")
		}
		return dto.LoginResponse{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		log.Warn("login with wrong password", "uid", user.UID)
		return dto.LoginResponse{}, errs.NewUnauthorizedError("invalid password")
	}
	if !user.IsActive {
		return dto.LoginResponse{}, errs.NewForbiddenError("account is disabled")
	}

	user.LastLogin = time.Now()
	if err := s.Store.UpdateUser(ctx, user); err != nil {
		return dto.LoginResponse{}, err
	}

	token, err := s.Tokens.CustomToken(ctx, user.UID)
	if err != nil {
		return dto.LoginResponse{}, errs.NewExternalServiceError("firebase", false, err)
	}

	log.Info("user logged in", "uid", user.UID)
	return dto.LoginResponse{User: user, Token: token}, nil
}

// VerifyUser confirms an account exists for the email and role pair ahead of
// a password reset.
func (s *userService) VerifyUser(ctx context.Context, req dto.VerifyUserRequest) (dto.VerifyUserResponse, error) {
	user, err := s.findByEmailAndRole(ctx, req.Email, req.Role)
	if err != nil {
		return dto.VerifyUserResponse{Verified: false}, err
	}
	return dto.VerifyUserResponse{Verified: true, UserName: user.Name}, nil
}

func (s *userService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if len(req.NewPassword) < dto.MinPasswordLength {
		return errs.NewValidationError("password must be at least 8 characters long")
	}
	user, err := s.findByEmailAndRole(ctx, req.Email, req.Role)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.Store.UpdateUser(ctx, user); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("password reset", "uid", user.UID)
	return nil
}

func (s *userService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return s.Store.GetUser(ctx, uid)
}

// registrationRole decides the stored role. Configured admin emails always
// become admins; the admin role is refused for everyone else.
func (s *userService) registrationRole(email, requested string) (string, error) {
	if s.admins[email] {
		return models.RoleAdmin, nil
	}
	role := strings.TrimSpace(requested)
	if strings.EqualFold(role, models.RoleAdmin) {
		return "", errs.NewFieldValidationError("invalid fields: role",
			map[string]string{"role": "role admin cannot be chosen at registration"})
	}
	return role, nil
}

func (s *userService) findByEmailAndRole(ctx context.Context, email, role string) (*models.User, error) {
	user, err := s.Store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			return nil, errs.NewNotFoundError("no user found with this email and role")
		}
		return nil, err
	}
	if !strings.EqualFold(user.Role, strings.TrimSpace(role)) {
		return nil, errs.NewNotFoundError("no user found with this email and role")
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
