package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/loca-app/loca-api/internal/caption"
	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/media"
	"github.com/loca-app/loca-api/internal/repository"
)

var (
	ErrPhotoNotFound = repository.ErrPhotoNotFound
	ErrAlreadyLiked  = repository.ErrAlreadyLiked
	ErrLikeNotFound  = repository.ErrLikeNotFound
)

type PhotoRepository interface {
	Create(ctx context.Context, photo domain.Photo) (domain.Photo, error)
	FindByID(ctx context.Context, id uint) (domain.Photo, error)
	List(ctx context.Context, filter domain.PhotoFilter) ([]domain.Photo, error)
	Search(ctx context.Context, q string, sort domain.PhotoSort, limit, offset int) ([]domain.Photo, error)
	UpdateDescription(ctx context.Context, id uint, description string) error
	CreateLike(ctx context.Context, userID, photoID uint) (domain.Like, error)
	DeleteLike(ctx context.Context, userID, photoID uint) error
}

type CaptionOptions struct {
	Timeout  time.Duration
	Fallback string
}

type PhotoService struct {
	repo        PhotoRepository
	userRepo    UserRepository
	keywordRepo KeywordRepository
	store       media.Store
	namer       *media.Namer
	describer   caption.Describer
	captionOpts CaptionOptions
}

func NewPhotoService(
	repo PhotoRepository,
	userRepo UserRepository,
	keywordRepo KeywordRepository,
	store media.Store,
	namer *media.Namer,
	describer caption.Describer,
	captionOpts CaptionOptions,
) *PhotoService {
	if captionOpts.Timeout <= 0 {
		captionOpts.Timeout = 30 * time.Second
	}

	return &PhotoService{
		repo:        repo,
		userRepo:    userRepo,
		keywordRepo: keywordRepo,
		store:       store,
		namer:       namer,
		describer:   describer,
		captionOpts: captionOpts,
	}
}

// UploadPhoto stores a feed photo and then asks the caption service to
// describe it. The caption is written separately after the photo row is
// committed and never fails the upload.
func (s *PhotoService) UploadPhoto(ctx context.Context, userID, keywordID uint, image domain.Image, geo domain.Geo) (domain.Photo, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return domain.Photo{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	if _, err := s.keywordRepo.FindByID(ctx, keywordID); err != nil {
		return domain.Photo{}, fmt.Errorf("s.keywordRepo.FindByID -> %w", err)
	}

	if _, err := media.DetectImageType(image.Data); err != nil {
		return domain.Photo{}, err
	}

	key := s.namer.PhotoKey(userID, image.Filename)
	if err := s.store.Save(ctx, key, image.Data); err != nil {
		return domain.Photo{}, fmt.Errorf("%w: s.store.Save -> %w", ErrStorageFailure, err)
	}

	created, err := s.repo.Create(ctx, domain.Photo{
		UserID:     userID,
		KeywordID:  keywordID,
		ImagePath:  key,
		Location:   geo.Location,
		Latitude:   geo.Latitude,
		Longitude:  geo.Longitude,
		UploadedAt: time.Now().UTC(),
	})
	if err != nil {
		s.removeOrphan(ctx, key)
		return domain.Photo{}, fmt.Errorf("%w: s.repo.Create -> %w", ErrStorageFailure, err)
	}

	description := s.describe(ctx, created.ID, image.Data)
	created.AIDescription = &description

	return created, nil
}

func (s *PhotoService) describe(ctx context.Context, photoID uint, image []byte) string {
	base := context.WithoutCancel(ctx)

	captionCtx, cancel := context.WithTimeout(base, s.captionOpts.Timeout)
	defer cancel()

	description, err := s.describer.Describe(captionCtx, image)
	if err != nil {
		zap.L().Warn("caption failed, using fallback", zap.Uint("photoID", photoID), zap.Error(err))
		description = s.captionOpts.Fallback
	}

	writeCtx, cancelWrite := context.WithTimeout(base, cleanupTimeout)
	defer cancelWrite()

	if err = s.repo.UpdateDescription(writeCtx, photoID, description); err != nil {
		zap.L().Error("failed to store caption", zap.Uint("photoID", photoID), zap.Error(err))
	}

	return description
}

func (s *PhotoService) GetPhoto(ctx context.Context, id uint) (domain.Photo, error) {
	photo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return photo, nil
}

func (s *PhotoService) ListPhotos(ctx context.Context, filter domain.PhotoFilter) ([]domain.Photo, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	photos, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return photos, nil
}

func (s *PhotoService) SearchPhotos(ctx context.Context, q string, sort domain.PhotoSort, limit, offset int) ([]domain.Photo, error) {
	if sort != domain.SortLikes {
		sort = domain.SortLatest
	}
	limit, offset = normalizePage(limit, offset)

	photos, err := s.repo.Search(ctx, q, sort, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Search -> %w", err)
	}

	return photos, nil
}

func (s *PhotoService) LikePhoto(ctx context.Context, userID, photoID uint) (domain.Like, error) {
	if _, err := s.repo.FindByID(ctx, photoID); err != nil {
		return domain.Like{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return domain.Like{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	like, err := s.repo.CreateLike(ctx, userID, photoID)
	if err != nil {
		return domain.Like{}, fmt.Errorf("s.repo.CreateLike -> %w", err)
	}

	return like, nil
}

func (s *PhotoService) UnlikePhoto(ctx context.Context, userID, photoID uint) error {
	if err := s.repo.DeleteLike(ctx, userID, photoID); err != nil {
		if errors.Is(err, ErrLikeNotFound) {
			return ErrLikeNotFound
		}
		return fmt.Errorf("s.repo.DeleteLike -> %w", err)
	}

	return nil
}

func (s *PhotoService) removeOrphan(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := s.store.Delete(ctx, key); err != nil {
		zap.L().Error("failed to remove orphaned upload", zap.String("key", key), zap.Error(err))
	}
}
