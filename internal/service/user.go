package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/repository"
)

var (
	ErrUserNotFound   = repository.ErrUserNotFound
	ErrNicknameExists = repository.ErrNicknameExists
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Stats(ctx context.Context, id uint) (domain.UserStats, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// CreateUser registers a nickname with the starting balance.
func (s *UserService) CreateUser(ctx context.Context, nickname string) (domain.User, error) {
	created, err := s.repo.Create(ctx, domain.User{
		Nickname: strings.TrimSpace(nickname),
		Points:   domain.InitialPoints,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	limit, offset = normalizePage(limit, offset)

	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return users, nil
}

func (s *UserService) GetUserStats(ctx context.Context, id uint) (domain.UserStats, error) {
	stats, err := s.repo.Stats(ctx, id)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("s.repo.Stats -> %w", err)
	}

	return stats, nil
}
