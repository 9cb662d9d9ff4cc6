package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/isys3001/todo-backend/internal/models"
)

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser is a single INSERT: the unique index on email is the only
// duplicate guard, so two concurrent registrations of the same email race
// on the constraint and exactly one of them wins.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExist
		}
		return err
	}
	return nil
}
