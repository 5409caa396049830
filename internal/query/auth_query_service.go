package query

import (
	"context"
	"fmt"
	"time"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/middleware"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/repository"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/utils"
)

// AuthQueryService handles login, token refresh and profile reads. There is
// no command service for auth because these operations don't mutate
// application state.
type AuthQueryService struct {
	userRepo *repository.UserRepository
	orgRepo  *repository.OrganizationRepository
	tokenTTL time.Duration
}

func NewAuthQueryService(userRepo *repository.UserRepository, orgRepo *repository.OrganizationRepository, tokenTTL time.Duration) *AuthQueryService {
	return &AuthQueryService{userRepo: userRepo, orgRepo: orgRepo, tokenTTL: tokenTTL}
}

// Login checks the credentials and mints a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return "", fmt.Errorf("invalid credentials")
	}
	return middleware.GenerateToken(user.ID, user.OrgID, user.Email, s.tokenTTL)
}

// RefreshToken exchanges a still-valid token for a fresh one.
func (s *AuthQueryService) RefreshToken(ctx context.Context, cmd cqrs.RefreshTokenCommand) (string, error) {
	claims, err := middleware.ParseToken(cmd.Token)
	if err != nil {
		return "", fmt.Errorf("invalid token")
	}
	return middleware.GenerateToken(claims.UserID, claims.OrgID, claims.Email, s.tokenTTL)
}

// TokenTTL is exposed so the handler can report expiry alongside new tokens.
func (s *AuthQueryService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// GetUser returns the authenticated user's own profile together with the
// organization the user belongs to.
func (s *AuthQueryService) GetUser(ctx context.Context, q cqrs.GetUserQuery) (*models.UserView, *models.Organization, error) {
	user, err := s.userRepo.GetByID(ctx, q.UserID)
	if err != nil {
		return nil, nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, user.OrgID)
	if err != nil {
		return nil, nil, err
	}
	view := &models.UserView{
		ID:        user.ID,
		OrgID:     user.OrgID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
	return view, org, nil
}
