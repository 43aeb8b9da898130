package repository

import (
	"context"
	"fmt"

	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/repository/dao"
)

var (
	ErrNicknameExists = dao.ErrNicknameExists
	ErrUserNotFound   = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	List(ctx context.Context, limit, offset int) ([]dao.User, error)
	Stats(ctx context.Context, id uint) (dao.UserStats, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, dao.User{
		Nickname: user.Nickname,
		Points:   user.Points,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	found, err := r.dao.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	users := make([]domain.User, 0, len(found))
	for _, u := range found {
		users = append(users, r.daoToDomain(u))
	}

	return users, nil
}

func (r *UserRepository) Stats(ctx context.Context, id uint) (domain.UserStats, error) {
	user, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	stats, err := r.dao.Stats(ctx, id)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("r.dao.Stats -> %w", err)
	}

	return domain.UserStats{
		UserID:               user.ID,
		Nickname:             user.Nickname,
		Points:               user.Points,
		PhotoCount:           stats.PhotoCount,
		ReceivedLikes:        stats.ReceivedLikes,
		ContestCount:         stats.ContestCount,
		ParticipatedContests: stats.ParticipatedContests,
	}, nil
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Nickname:  u.Nickname,
		Points:    u.Points,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
