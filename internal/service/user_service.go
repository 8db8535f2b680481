package service

import (
	"context"

	"github.com/xxxsen/magicauth/internal/model"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}
