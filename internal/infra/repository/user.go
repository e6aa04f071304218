package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/i18n-store/internal/domain"
	"github.com/totegamma/i18n-store/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id uint64) (domain.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, errors.Wrap(err, "failed to get user")
	}
	return toDomainUser(user), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, errors.Wrap(err, "failed to find user")
	}
	return toDomainUser(user), nil
}

// Upsert creates the user or, when the email is taken, replaces its name and
// password hash.
func (r *UserRepository) Upsert(ctx context.Context, user domain.User) (domain.User, error) {
	row := models.User{
		Name:     user.Name,
		Email:    user.Email,
		Password: user.PasswordHash,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "password", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return domain.User{}, errors.Wrap(err, "failed to upsert user")
	}

	return r.FindByEmail(ctx, user.Email)
}

func toDomainUser(user models.User) domain.User {
	return domain.User{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.Password,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
