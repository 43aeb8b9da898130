package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/media"
	"github.com/loca-app/loca-api/internal/repository"
)

var (
	ErrContestNotFound      = repository.ErrContestNotFound
	ErrContestNotActive     = repository.ErrContestNotActive
	ErrContestNotCompleted  = repository.ErrContestNotCompleted
	ErrNotContestOwner      = repository.ErrNotContestOwner
	ErrContestPhotoNotFound = repository.ErrContestPhotoNotFound
	ErrInsufficientPoints   = repository.ErrInsufficientPoints
	ErrDataIntegrity        = repository.ErrDataIntegrity
	ErrStorageFailure       = errors.New("storage failure")
	ErrInvalidImage         = media.ErrUnsupportedType
	ErrNegativeStake        = errors.New("points must not be negative")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// cleanupTimeout bounds compensation work that must outlive the request context.
const cleanupTimeout = 10 * time.Second

type ContestRepository interface {
	Create(ctx context.Context, contest domain.Contest) (domain.Contest, error)
	FindByID(ctx context.Context, id uint) (domain.Contest, error)
	List(ctx context.Context, filter domain.ContestFilter) ([]domain.Contest, error)
	ListApplied(ctx context.Context, userID uint, limit, offset int) ([]domain.Contest, error)
	Update(ctx context.Context, contestID, callerID uint, patch domain.ContestPatch) (domain.Contest, error)
	Cancel(ctx context.Context, contestID, callerID uint) (domain.Contest, error)
	SelectWinner(ctx context.Context, contestID, photoID, callerID uint) (domain.Selection, error)
	CreatePhoto(ctx context.Context, photo domain.ContestPhoto) (domain.ContestPhoto, error)
	FindPhotos(ctx context.Context, contestID uint) ([]domain.ContestPhoto, error)
	DeleteCompleted(ctx context.Context, contestID, callerID uint, removeFiles func(paths []string) error) error
}

type ContestService struct {
	repo     ContestRepository
	userRepo UserRepository
	store    media.Store
	namer    *media.Namer
}

func NewContestService(repo ContestRepository, userRepo UserRepository, store media.Store, namer *media.Namer) *ContestService {
	return &ContestService{
		repo:     repo,
		userRepo: userRepo,
		store:    store,
		namer:    namer,
	}
}

func (s *ContestService) CreateContest(ctx context.Context, contest domain.Contest) (domain.Contest, error) {
	if contest.Points < 0 {
		return domain.Contest{}, ErrNegativeStake
	}

	if _, err := s.userRepo.FindByID(ctx, contest.OwnerID); err != nil {
		return domain.Contest{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	created, err := s.repo.Create(ctx, contest)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ContestService) GetContest(ctx context.Context, id uint) (domain.Contest, error) {
	contest, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return contest, nil
}

func (s *ContestService) ListContests(ctx context.Context, filter domain.ContestFilter) ([]domain.Contest, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	contests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return contests, nil
}

func (s *ContestService) ListAppliedContests(ctx context.Context, userID uint, limit, offset int) ([]domain.Contest, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	limit, offset = normalizePage(limit, offset)

	contests, err := s.repo.ListApplied(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListApplied -> %w", err)
	}

	return contests, nil
}

func (s *ContestService) UpdateContest(ctx context.Context, contestID, callerID uint, patch domain.ContestPatch) (domain.Contest, error) {
	updated, err := s.repo.Update(ctx, contestID, callerID, patch)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *ContestService) CancelContest(ctx context.Context, contestID, callerID uint) (domain.Contest, error) {
	cancelled, err := s.repo.Cancel(ctx, contestID, callerID)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("s.repo.Cancel -> %w", err)
	}

	zap.L().Info("contest cancelled", zap.Uint("contestID", contestID), zap.Uint("ownerID", callerID))

	return cancelled, nil
}

// SubmitPhoto stores the image and then the submission row. If the row cannot
// be written the stored image is removed again.
func (s *ContestService) SubmitPhoto(
	ctx context.Context,
	contestID, userID uint,
	image domain.Image,
	geo domain.Geo,
	description *string,
) (domain.ContestPhoto, error) {
	contest, err := s.repo.FindByID(ctx, contestID)
	if err != nil {
		return domain.ContestPhoto{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !contest.AcceptsSubmissions() {
		return domain.ContestPhoto{}, ErrContestNotActive
	}

	if _, err = s.userRepo.FindByID(ctx, userID); err != nil {
		return domain.ContestPhoto{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	if _, err = media.DetectImageType(image.Data); err != nil {
		return domain.ContestPhoto{}, err
	}

	key := s.namer.ContestPhotoKey(contestID, userID, image.Filename)
	if err = s.store.Save(ctx, key, image.Data); err != nil {
		return domain.ContestPhoto{}, fmt.Errorf("%w: s.store.Save -> %w", ErrStorageFailure, err)
	}

	created, err := s.repo.CreatePhoto(ctx, domain.ContestPhoto{
		ContestID:   contestID,
		UserID:      userID,
		ImagePath:   key,
		Location:    geo.Location,
		Latitude:    geo.Latitude,
		Longitude:   geo.Longitude,
		Description: description,
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		s.removeOrphan(ctx, key)

		switch {
		case errors.Is(err, ErrContestNotActive),
			errors.Is(err, ErrContestNotFound),
			errors.Is(err, ErrDataIntegrity):
			return domain.ContestPhoto{}, fmt.Errorf("s.repo.CreatePhoto -> %w", err)
		}

		return domain.ContestPhoto{}, fmt.Errorf("%w: s.repo.CreatePhoto -> %w", ErrStorageFailure, err)
	}

	return created, nil
}

func (s *ContestService) ListContestPhotos(ctx context.Context, contestID uint) ([]domain.ContestPhoto, error) {
	if _, err := s.repo.FindByID(ctx, contestID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	photos, err := s.repo.FindPhotos(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPhotos -> %w", err)
	}

	return photos, nil
}

// SelectWinner completes the contest and transfers its stake from the owner
// to the author of photoID.
func (s *ContestService) SelectWinner(ctx context.Context, contestID, photoID, callerID uint) (domain.Selection, error) {
	selection, err := s.repo.SelectWinner(ctx, contestID, photoID, callerID)
	if err != nil {
		return domain.Selection{}, fmt.Errorf("s.repo.SelectWinner -> %w", err)
	}

	zap.L().Info("contest completed",
		zap.Uint("contestID", contestID),
		zap.Uint("photoID", photoID),
		zap.Uint("ownerID", callerID),
		zap.Uint("winnerID", selection.WinnerID),
		zap.Int("points", selection.Contest.Points),
	)

	return selection, nil
}

// DeleteContest tears down a completed contest: the image of every submission,
// the contest directory, the submission rows and the contest row. Files are
// removed before the row deletions commit; a file error rolls the rows back.
func (s *ContestService) DeleteContest(ctx context.Context, contestID, callerID uint) error {
	err := s.repo.DeleteCompleted(ctx, contestID, callerID, func(paths []string) error {
		for _, p := range paths {
			if err := s.store.Delete(ctx, p); err != nil {
				return fmt.Errorf("%w: s.store.Delete -> %w", ErrStorageFailure, err)
			}
		}

		if err := s.store.DeleteDir(ctx, media.ContestDir(contestID)); err != nil {
			return fmt.Errorf("%w: s.store.DeleteDir -> %w", ErrStorageFailure, err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("s.repo.DeleteCompleted -> %w", err)
	}

	zap.L().Info("contest deleted", zap.Uint("contestID", contestID), zap.Uint("ownerID", callerID))

	return nil
}

func (s *ContestService) removeOrphan(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := s.store.Delete(ctx, key); err != nil {
		zap.L().Error("failed to remove orphaned upload", zap.String("key", key), zap.Error(err))
	}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
