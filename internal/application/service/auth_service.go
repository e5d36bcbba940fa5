package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/garyjia/voucher-flow/internal/application/port"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
)

// AuthService authenticates users and issues bearer tokens carrying the PIN
type AuthService interface {
	// Login accepts a PIN or username. When requiredRole is set the user
	// must hold that role.
	Login(ctx context.Context, identifier, secret string, requiredRole entity.Role) (string, *entity.User, error)
	// Authenticate resolves a bearer token to its user
	Authenticate(ctx context.Context, token string) (*entity.User, error)
	// Seed stores the given profiles, hashing their passwords
	Seed(ctx context.Context, users []SeedUser) error
}

// AuthConfig configures token issuance
type AuthConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// SeedUser is a user profile with a plaintext seed password
type SeedUser struct {
	entity.User
	Password string
}

type tokenClaims struct {
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

type authServiceImpl struct {
	users  port.UserRepository
	cfg    AuthConfig
	logger Logger
	now    func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(users port.UserRepository, cfg AuthConfig, logger Logger) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	return &authServiceImpl{
		users:  users,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (s *authServiceImpl) Login(ctx context.Context, identifier, secret string, requiredRole entity.Role) (string, *entity.User, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.users.GetByPIN(ctx, identifier)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		if user, err = s.users.GetByUsername(ctx, identifier); err != nil {
			return "", nil, err
		}
	}
	if user == nil {
		s.logger.Info("Login rejected", "identifier", identifier, "reason", "unknown user")
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)); err != nil {
		s.logger.Info("Login rejected", "pin", user.PIN, "reason", "wrong secret")
		return "", nil, ErrInvalidCredentials
	}

	if requiredRole != "" && user.Role != requiredRole {
		s.logger.Info("Login rejected", "pin", user.PIN, "role", user.Role, "required_role", requiredRole)
		return "", nil, ErrForbidden
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("User logged in", "pin", user.PIN, "role", user.Role)
	return token, user, nil
}

func (s *authServiceImpl) issue(user *entity.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.PIN,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	var claims tokenClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := s.users.GetByPIN(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnauthenticated, ErrUserNotFound)
	}
	return user, nil
}

func (s *authServiceImpl) Seed(ctx context.Context, users []SeedUser) error {
	for _, seed := range users {
		if !seed.Role.IsValid() {
			return fmt.Errorf("seed user %s: invalid role %q", seed.PIN, seed.Role)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password of %s: %w", seed.PIN, err)
		}

		u := seed.User
		u.PasswordHash = string(hash)
		if err := s.users.Upsert(ctx, &u); err != nil {
			return err
		}
	}

	s.logger.Info("Users seeded", "count", len(users))
	return nil
}

// IsAuthError reports whether err should be answered as unauthenticated
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrInvalidCredentials)
}

// DefaultSeedUsers is the staff directory seeded on a fresh install
func DefaultSeedUsers() []SeedUser {
	seed := func(pin, name, username, mobile, dept, designation string, role entity.Role) SeedUser {
		return SeedUser{
			User: entity.User{
				PIN:          pin,
				Name:         name,
				Username:     username,
				MobileNumber: mobile,
				Department:   dept,
				Designation:  designation,
				Role:         role,
			},
			Password: pin,
		}
	}

	return []SeedUser{
		seed("1001", "মোঃ রহিম উদ্দিন", "rahim", "01711000001", "একাডেমিক", "শিক্ষক", entity.RoleUser),
		seed("1002", "ফাতেমা খাতুন", "fatema", "01711000002", "একাডেমিক", "শিক্ষক", entity.RoleUser),
		seed("1003", "করিম হোসেন", "karim", "01711000003", "প্রশাসন", "অফিস সহকারী", entity.RoleUser),
		seed("2001", "নাসরিন আক্তার", "nasrin", "01711000011", "একাডেমিক", "মেন্টর", entity.RoleMentor),
		seed("3001", "আব্দুল কাদের", "kader", "01711000021", "হিসাব", "হিসাবরক্ষক", entity.RolePayment),
		seed("4001", "সেলিনা পারভীন", "selina", "01711000031", "অডিট", "অডিটর", entity.RoleAudit),
	}
}
