package repository

import (
	"context"
	"fmt"

	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/repository/dao"
)

var (
	ErrContestNotFound      = dao.ErrContestNotFound
	ErrContestNotActive     = dao.ErrContestNotActive
	ErrContestNotCompleted  = dao.ErrContestNotCompleted
	ErrNotContestOwner      = dao.ErrNotContestOwner
	ErrContestPhotoNotFound = dao.ErrContestPhotoNotFound
	ErrInsufficientPoints   = dao.ErrInsufficientPoints
	ErrDataIntegrity        = dao.ErrDataIntegrity
)

type ContestDAO interface {
	Insert(ctx context.Context, contest dao.Contest) (dao.Contest, error)
	FindByID(ctx context.Context, id uint) (dao.Contest, error)
	List(ctx context.Context, filter dao.ContestFilter) ([]dao.Contest, error)
	ListApplied(ctx context.Context, userID uint, limit, offset int) ([]dao.Contest, error)
	CountPhotos(ctx context.Context, contestIDs []uint) (map[uint]int64, error)
	Update(ctx context.Context, contestID, callerID uint, patch dao.ContestPatch) (dao.Contest, error)
	Cancel(ctx context.Context, contestID, callerID uint) (dao.Contest, error)
	SelectWinner(ctx context.Context, contestID, photoID, callerID uint) (dao.SelectionResult, error)
	InsertPhoto(ctx context.Context, photo dao.ContestPhoto) (dao.ContestPhoto, error)
	FindPhotos(ctx context.Context, contestID uint) ([]dao.ContestPhoto, error)
	DeleteCompleted(ctx context.Context, contestID, callerID uint, beforeCommit func([]dao.ContestPhoto) error) error
}

type ContestRepository struct {
	dao ContestDAO
}

func NewContestRepository(dao ContestDAO) *ContestRepository {
	return &ContestRepository{
		dao: dao,
	}
}

func (r *ContestRepository) Create(ctx context.Context, contest domain.Contest) (domain.Contest, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(contest))
	if err != nil {
		return domain.Contest{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created, 0), nil
}

func (r *ContestRepository) FindByID(ctx context.Context, id uint) (domain.Contest, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.withPhotoCount(ctx, found)
}

func (r *ContestRepository) List(ctx context.Context, filter domain.ContestFilter) ([]domain.Contest, error) {
	found, err := r.dao.List(ctx, dao.ContestFilter{
		Status:  string(filter.Status),
		OwnerID: filter.OwnerID,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.withPhotoCounts(ctx, found)
}

func (r *ContestRepository) ListApplied(ctx context.Context, userID uint, limit, offset int) ([]domain.Contest, error) {
	found, err := r.dao.ListApplied(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListApplied -> %w", err)
	}

	return r.withPhotoCounts(ctx, found)
}

func (r *ContestRepository) Update(ctx context.Context, contestID, callerID uint, patch domain.ContestPatch) (domain.Contest, error) {
	updated, err := r.dao.Update(ctx, contestID, callerID, dao.ContestPatch{
		Title:       patch.Title,
		Description: patch.Description,
		Deadline:    patch.Deadline,
	})
	if err != nil {
		return domain.Contest{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.withPhotoCount(ctx, updated)
}

func (r *ContestRepository) Cancel(ctx context.Context, contestID, callerID uint) (domain.Contest, error) {
	cancelled, err := r.dao.Cancel(ctx, contestID, callerID)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("r.dao.Cancel -> %w", err)
	}

	return r.withPhotoCount(ctx, cancelled)
}

func (r *ContestRepository) SelectWinner(ctx context.Context, contestID, photoID, callerID uint) (domain.Selection, error) {
	res, err := r.dao.SelectWinner(ctx, contestID, photoID, callerID)
	if err != nil {
		return domain.Selection{}, fmt.Errorf("r.dao.SelectWinner -> %w", err)
	}

	contest, err := r.withPhotoCount(ctx, res.Contest)
	if err != nil {
		return domain.Selection{}, err
	}

	return domain.Selection{
		Contest:      contest,
		WinnerID:     res.WinnerID,
		OwnerPoints:  res.OwnerPoints,
		WinnerPoints: res.WinnerPoints,
	}, nil
}

func (r *ContestRepository) CreatePhoto(ctx context.Context, photo domain.ContestPhoto) (domain.ContestPhoto, error) {
	created, err := r.dao.InsertPhoto(ctx, dao.ContestPhoto{
		ContestID:   photo.ContestID,
		UserID:      photo.UserID,
		ImagePath:   photo.ImagePath,
		Location:    photo.Location,
		Latitude:    photo.Latitude,
		Longitude:   photo.Longitude,
		Description: photo.Description,
		SubmittedAt: photo.SubmittedAt,
	})
	if err != nil {
		return domain.ContestPhoto{}, fmt.Errorf("r.dao.InsertPhoto -> %w", err)
	}

	return r.photoDaoToDomain(created), nil
}

func (r *ContestRepository) FindPhotos(ctx context.Context, contestID uint) ([]domain.ContestPhoto, error) {
	found, err := r.dao.FindPhotos(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPhotos -> %w", err)
	}

	photos := make([]domain.ContestPhoto, 0, len(found))
	for _, p := range found {
		photos = append(photos, r.photoDaoToDomain(p))
	}

	return photos, nil
}

// DeleteCompleted removes a completed contest. removeFiles is handed the image
// paths of every submission before the row deletions are committed.
func (r *ContestRepository) DeleteCompleted(ctx context.Context, contestID, callerID uint, removeFiles func(paths []string) error) error {
	err := r.dao.DeleteCompleted(ctx, contestID, callerID, func(photos []dao.ContestPhoto) error {
		paths := make([]string, 0, len(photos))
		for _, p := range photos {
			paths = append(paths, p.ImagePath)
		}

		return removeFiles(paths)
	})
	if err != nil {
		return fmt.Errorf("r.dao.DeleteCompleted -> %w", err)
	}

	return nil
}

func (r *ContestRepository) withPhotoCount(ctx context.Context, c dao.Contest) (domain.Contest, error) {
	counts, err := r.dao.CountPhotos(ctx, []uint{c.ID})
	if err != nil {
		return domain.Contest{}, fmt.Errorf("r.dao.CountPhotos -> %w", err)
	}

	return r.daoToDomain(c, counts[c.ID]), nil
}

func (r *ContestRepository) withPhotoCounts(ctx context.Context, found []dao.Contest) ([]domain.Contest, error) {
	ids := make([]uint, 0, len(found))
	for _, c := range found {
		ids = append(ids, c.ID)
	}

	counts, err := r.dao.CountPhotos(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountPhotos -> %w", err)
	}

	contests := make([]domain.Contest, 0, len(found))
	for _, c := range found {
		contests = append(contests, r.daoToDomain(c, counts[c.ID]))
	}

	return contests, nil
}

func (r *ContestRepository) domainToDao(c domain.Contest) dao.Contest {
	return dao.Contest{
		ID:              c.ID,
		UserID:          c.OwnerID,
		Title:           c.Title,
		Description:     c.Description,
		Points:          c.Points,
		Deadline:        c.Deadline,
		Status:          string(c.Status),
		SelectedPhotoID: c.SelectedPhotoID,
		CreatedAt:       c.CreatedAt,
		CompletedAt:     c.CompletedAt,
	}
}

func (r *ContestRepository) daoToDomain(c dao.Contest, photoCount int64) domain.Contest {
	return domain.Contest{
		ID:              c.ID,
		OwnerID:         c.UserID,
		Title:           c.Title,
		Description:     c.Description,
		Points:          c.Points,
		Deadline:        c.Deadline,
		Status:          domain.ContestStatus(c.Status),
		SelectedPhotoID: c.SelectedPhotoID,
		CreatedAt:       c.CreatedAt,
		CompletedAt:     c.CompletedAt,
		PhotoCount:      photoCount,
	}
}

func (r *ContestRepository) photoDaoToDomain(p dao.ContestPhoto) domain.ContestPhoto {
	return domain.ContestPhoto{
		ID:           p.ID,
		ContestID:    p.ContestID,
		UserID:       p.UserID,
		ImagePath:    p.ImagePath,
		Location:     p.Location,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Description:  p.Description,
		SubmittedAt:  p.SubmittedAt,
		UserNickname: p.User.Nickname,
	}
}
