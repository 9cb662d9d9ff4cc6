package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/isys3001/todo-backend/internal/models"
)

func (r *GormRepo) SaveTodo(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	if err := r.DB.WithContext(ctx).Save(todo).Error; err != nil {
		return nil, err
	}
	return todo, nil
}

// FindTodoByIDAndOwner scopes the lookup by owner in the query itself, so a
// record owned by someone else comes back as ErrTodoNotFound.
func (r *GormRepo) FindTodoByIDAndOwner(ctx context.Context, id, ownerID uint) (*models.Todo, error) {
	var todo models.Todo
	if err := r.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return &todo, nil
}

func (r *GormRepo) FindTodosByOwner(ctx context.Context, ownerID uint) ([]models.Todo, error) {
	items := make([]models.Todo, 0)
	if err := r.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) DeleteTodoByIDAndOwner(ctx context.Context, id, ownerID uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Todo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}
