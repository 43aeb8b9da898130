package repository

import (
	"context"
	"fmt"

	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/repository/dao"
)

var (
	ErrPhotoNotFound = dao.ErrPhotoNotFound
	ErrAlreadyLiked  = dao.ErrAlreadyLiked
	ErrLikeNotFound  = dao.ErrLikeNotFound
)

type PhotoDAO interface {
	Insert(ctx context.Context, photo dao.Photo) (dao.Photo, error)
	FindByID(ctx context.Context, id uint) (dao.PhotoWithLikes, error)
	List(ctx context.Context, filter dao.PhotoFilter) ([]dao.PhotoWithLikes, error)
	Search(ctx context.Context, q, sort string, limit, offset int) ([]dao.PhotoWithLikes, error)
	UpdateDescription(ctx context.Context, id uint, description string) error
	InsertLike(ctx context.Context, like dao.Like) (dao.Like, error)
	DeleteLike(ctx context.Context, userID, photoID uint) error
}

type PhotoRepository struct {
	dao PhotoDAO
}

func NewPhotoRepository(dao PhotoDAO) *PhotoRepository {
	return &PhotoRepository{
		dao: dao,
	}
}

func (r *PhotoRepository) Create(ctx context.Context, photo domain.Photo) (domain.Photo, error) {
	created, err := r.dao.Insert(ctx, dao.Photo{
		UserID:        photo.UserID,
		KeywordID:     photo.KeywordID,
		ImagePath:     photo.ImagePath,
		Location:      photo.Location,
		Latitude:      photo.Latitude,
		Longitude:     photo.Longitude,
		AIDescription: photo.AIDescription,
		UploadedAt:    photo.UploadedAt,
	})
	if err != nil {
		return domain.Photo{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(dao.PhotoWithLikes{Photo: created}), nil
}

func (r *PhotoRepository) FindByID(ctx context.Context, id uint) (domain.Photo, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *PhotoRepository) List(ctx context.Context, filter domain.PhotoFilter) ([]domain.Photo, error) {
	found, err := r.dao.List(ctx, dao.PhotoFilter{
		KeywordID: filter.KeywordID,
		UserID:    filter.UserID,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *PhotoRepository) Search(ctx context.Context, q string, sort domain.PhotoSort, limit, offset int) ([]domain.Photo, error) {
	found, err := r.dao.Search(ctx, q, string(sort), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Search -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *PhotoRepository) UpdateDescription(ctx context.Context, id uint, description string) error {
	if err := r.dao.UpdateDescription(ctx, id, description); err != nil {
		return fmt.Errorf("r.dao.UpdateDescription -> %w", err)
	}

	return nil
}

func (r *PhotoRepository) CreateLike(ctx context.Context, userID, photoID uint) (domain.Like, error) {
	created, err := r.dao.InsertLike(ctx, dao.Like{
		UserID:  userID,
		PhotoID: photoID,
	})
	if err != nil {
		return domain.Like{}, fmt.Errorf("r.dao.InsertLike -> %w", err)
	}

	return domain.Like{
		ID:        created.ID,
		UserID:    created.UserID,
		PhotoID:   created.PhotoID,
		CreatedAt: created.CreatedAt,
	}, nil
}

func (r *PhotoRepository) DeleteLike(ctx context.Context, userID, photoID uint) error {
	if err := r.dao.DeleteLike(ctx, userID, photoID); err != nil {
		return fmt.Errorf("r.dao.DeleteLike -> %w", err)
	}

	return nil
}

func (r *PhotoRepository) daosToDomain(found []dao.PhotoWithLikes) []domain.Photo {
	photos := make([]domain.Photo, 0, len(found))
	for _, p := range found {
		photos = append(photos, r.daoToDomain(p))
	}

	return photos
}

func (r *PhotoRepository) daoToDomain(p dao.PhotoWithLikes) domain.Photo {
	return domain.Photo{
		ID:            p.ID,
		UserID:        p.UserID,
		KeywordID:     p.KeywordID,
		ImagePath:     p.ImagePath,
		Location:      p.Location,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		AIDescription: p.AIDescription,
		UploadedAt:    p.UploadedAt,
		LikeCount:     p.LikeCount,
	}
}
