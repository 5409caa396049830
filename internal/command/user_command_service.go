package command

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/events"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/repository"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/utils"
)

// UserCommandService handles registration. Signup is the only way a new
// organization enters the system.
type UserCommandService struct {
	db        *sql.DB
	orgRepo   *repository.OrganizationRepository
	userRepo  *repository.UserRepository
	publisher *events.Publisher
}

func NewUserCommandService(
	db *sql.DB,
	orgRepo *repository.OrganizationRepository,
	userRepo *repository.UserRepository,
	publisher *events.Publisher,
) *UserCommandService {
	return &UserCommandService{
		db:        db,
		orgRepo:   orgRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// Register creates an organization and its first user as one unit: either
// both rows land or neither does. Duplicate organization names and emails
// surface as state conflicts from the unique constraints.
func (s *UserCommandService) Register(ctx context.Context, cmd cqrs.RegisterCommand) (*models.User, *models.Organization, error) {
	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin registration: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	org := &models.Organization{
		ID:        uuid.NewString(),
		Name:      cmd.OrganizationName,
		CreatedAt: now,
	}
	if err := s.orgRepo.Create(ctx, tx, org); err != nil {
		return nil, nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		OrgID:        org.ID,
		Email:        cmd.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, tx, user); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserRegistered, events.UserRegisteredEvent{
		UserID: user.ID,
		OrgID:  org.ID,
		Email:  user.Email,
	}); err != nil {
		logrus.WithError(err).Warn("Failed to publish user.registered event")
	}
	return user, org, nil
}
