package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/nebari-dev/attributes/internal/models"
	"gorm.io/gorm"
)

// UserService looks up accounts.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get returns the account with id. Id 0 is the anonymous account.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	if id == models.AnonymousUserID {
		return models.AnonymousUser(), nil
	}
	var u models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername returns the account with the given username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Find resolves autocomplete input: a numeric id, "name (id)" or a
// username.
func (s *UserService) Find(ctx context.Context, input string) (*models.User, error) {
	input = strings.TrimSpace(input)
	if open := strings.LastIndex(input, "("); open >= 0 && strings.HasSuffix(input, ")") {
		input = strings.TrimSpace(input[open+1 : len(input)-1])
	}
	if id, err := strconv.ParseUint(input, 10, 64); err == nil {
		return s.Get(ctx, uint(id))
	}
	return s.GetByUsername(ctx, input)
}

// List returns all accounts ordered by username.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
