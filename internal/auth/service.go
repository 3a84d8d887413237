package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/website-management/internal"
	"github.com/frahmantamala/website-management/internal/user"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the identity slice of the user store the auth
// service needs. CreateUser must reject a second admin and a reused
// email even under concurrent signups.
type UserRepository interface {
	GetByEmail(email string) (*user.User, error)
	GetByID(id int64) (*user.User, error)
	CreateUser(u *user.User) error
	CountAdmins() (int64, error)
}

type Service struct {
	users       UserRepository
	tokenGen    TokenGenerator
	revoker     TokenRevoker
	bcryptCost  int
	emailDomain string
	logger      *slog.Logger
}

func NewService(users UserRepository, tokenGen TokenGenerator, revoker TokenRevoker, bcryptCost int, emailDomain string, logger *slog.Logger) *Service {
	return &Service{
		users:       users,
		tokenGen:    tokenGen,
		revoker:     revoker,
		bcryptCost:  bcryptCost,
		emailDomain: emailDomain,
		logger:      logger,
	}
}

// ResolveEmail turns a login identifier into an email, appending the
// configured domain when the identifier carries no "@".
func (s *Service) ResolveEmail(identifier string) string {
	if strings.Contains(identifier, "@") {
		return identifier
	}
	return identifier + "@" + s.emailDomain
}

// Authenticate validates credentials and the requested role, and
// returns a token pair.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	email := s.ResolveEmail(dto.Identifier)

	u, err := s.users.GetByEmail(email)
	if err != nil {
		s.logger.Warn("login failed: user lookup", "email", email)
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !u.IsActiveUser() {
		return AuthTokens{}, ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login failed: password mismatch", "user_id", u.ID)
		return AuthTokens{}, ErrInvalidCredentials
	}

	// The admin portal and the user portal are separate entry points;
	// a role mismatch is treated the same as a bad password.
	if dto.AsAdmin != u.IsAdmin() {
		s.logger.Warn("login failed: role mismatch", "user_id", u.ID, "as_admin", dto.AsAdmin, "role", u.Role)
		return AuthTokens{}, ErrInvalidCredentials
	}

	return s.issueTokens(u)
}

// Signup registers a new identity. At most one admin may exist; the
// repository enforces that with a database constraint.
func (s *Service) Signup(dto SignupDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role := user.RoleUser
	if dto.AsAdmin {
		role = user.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	u := &user.User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: string(hash),
		Role:         role,
		Status:       user.StatusActive,
		Ranking:      user.RankingCustomer,
		Phone:        dto.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(u); err != nil {
		s.logger.Error("signup failed", "error", err, "email", dto.Email, "as_admin", dto.AsAdmin)
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", u.ID, "email", u.Email, "role", u.Role)
	return u, nil
}

// RefreshTokens validates a refresh token and returns a new pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGen.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}
	if !u.IsActiveUser() {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(u)
}

// ValidateAccessToken checks signature, expiry and the revocation list.
func (s *Service) ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.tokenGen.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, tokenString)
		if err != nil {
			s.logger.Warn("revocation check failed, accepting token", "error", err)
		} else if revoked {
			return nil, ErrInvalidToken
		}
	}

	return claims, nil
}

// Logout revokes the presented token until its natural expiry.
// Revoking an already revoked or expired token is a no-op.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokenGen.ValidateToken(tokenString)
	if err != nil {
		// Expired or garbage tokens need no revocation entry.
		return nil
	}

	if s.revoker == nil {
		return nil
	}

	ttl := time.Hour
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.revoker.Revoke(ctx, tokenString, ttl); err != nil {
		s.logger.Error("failed to revoke token", "error", err, "user_id", claims.UserID)
		return internal.NewInternalError("failed to revoke token", err)
	}

	s.logger.Info("user logged out", "user_id", claims.UserID)
	return nil
}

// GetUser resolves the full profile for an authenticated user id.
func (s *Service) GetUser(userID int64) (*user.User, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !u.IsActiveUser() {
		return nil, ErrUserInactive
	}
	return u, nil
}

func (s *Service) issueTokens(u *user.User) (AuthTokens, error) {
	accessToken, err := s.tokenGen.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate access token", err)
	}

	refreshToken, err := s.tokenGen.GenerateRefreshToken(u.ID, u.Email, u.Role)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
