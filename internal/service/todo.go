package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/isys3001/todo-backend/internal/models"
	"github.com/isys3001/todo-backend/internal/repo"
	"github.com/isys3001/todo-backend/internal/transport"
)

const (
	maxTitleLen       = 160
	maxDescriptionLen = 10000
)

// TodoService owns all business rules for todos: field bounds and
// ownership scoping. Every method takes the resolved principal and only
// ever touches records whose owner_id matches it; the store is never
// trusted to enforce that.
type TodoService struct {
	Repo *repo.GormRepo
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title must not be blank: %w", ErrValidation)
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("title must be at most %d characters: %w", maxTitleLen, ErrValidation)
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLen {
		return fmt.Errorf("description must be at most %d characters: %w", maxDescriptionLen, ErrValidation)
	}
	return nil
}

func (s *TodoService) Create(ctx context.Context, principal *models.User, title string, description *string) (*models.Todo, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	todo := models.Todo{
		Title:       title,
		Description: description,
		Completed:   false,
		OwnerID:     principal.ID,
	}

	return s.Repo.SaveTodo(ctx, &todo)
}

func (s *TodoService) ListMine(ctx context.Context, principal *models.User) ([]models.Todo, error) {
	return s.Repo.FindTodosByOwner(ctx, principal.ID)
}

func (s *TodoService) Get(ctx context.Context, principal *models.User, id uint) (*models.Todo, error) {
	todo, err := s.Repo.FindTodoByIDAndOwner(ctx, id, principal.ID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return todo, nil
}

// Update applies the patch field by field: nil means unchanged. A present
// but blank title is skipped rather than rejected, matching the create/update
// asymmetry of the HTTP contract. Saving refreshes UpdatedAt even when the
// patch changed nothing.
func (s *TodoService) Update(ctx context.Context, principal *models.User, id uint, patch transport.UpdateTodoRequest) (*models.Todo, error) {
	todo, err := s.Repo.FindTodoByIDAndOwner(ctx, id, principal.ID)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) != "" {
		if utf8.RuneCountInString(*patch.Title) > maxTitleLen {
			return nil, fmt.Errorf("title must be at most %d characters: %w", maxTitleLen, ErrValidation)
		}
		todo.Title = *patch.Title
	}
	if err := validateDescription(patch.Description); err != nil {
		return nil, err
	}
	if patch.Description != nil {
		todo.Description = patch.Description
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}

	return s.Repo.SaveTodo(ctx, todo)
}

func (s *TodoService) Delete(ctx context.Context, principal *models.User, id uint) error {
	if err := s.Repo.DeleteTodoByIDAndOwner(ctx, id, principal.ID); err != nil {
		return wrapNotFound(err)
	}
	return nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, repo.ErrTodoNotFound) {
		return fmt.Errorf("todo not found: %w", ErrNotFound)
	}
	return err
}
