package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrContestNotFound      = errors.New("contest not found")
	ErrContestNotActive     = errors.New("contest closed")
	ErrContestNotCompleted  = errors.New("only completed contests can be deleted")
	ErrNotContestOwner      = errors.New("only the contest owner can perform this action")
	ErrContestPhotoNotFound = errors.New("photo not found in this contest")
	ErrInsufficientPoints   = errors.New("owner has insufficient points")
	ErrDataIntegrity        = errors.New("data integrity violation")
)

const (
	ContestActive    = "active"
	ContestCompleted = "completed"
	ContestCancelled = "cancelled"
)

type Contest struct {
	ID uint `gorm:"primaryKey"`

	UserID uint `gorm:"not null;index"`
	User   User `gorm:"foreignKey:UserID"`

	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text;not null"`
	Points      int    `gorm:"not null;check:chk_contests_points,points >= 0"`
	Deadline    *time.Time
	Status      string `gorm:"size:20;not null;default:active;index"`

	// No foreign key: contest_photos already references contests.
	SelectedPhotoID *uint

	CreatedAt   time.Time `gorm:"not null;index"`
	CompletedAt *time.Time
}

type ContestFilter struct {
	Status  string
	OwnerID uint
	Limit   int
	Offset  int
}

type ContestPatch struct {
	Title       *string
	Description *string
	Deadline    *time.Time
}

// SelectionResult carries the completed contest and both balances after the transfer.
type SelectionResult struct {
	Contest      Contest
	WinnerID     uint
	OwnerPoints  int
	WinnerPoints int
}

type photoCount struct {
	ContestID uint
	Count     int64
}

type ContestDAO struct {
	db *gorm.DB
}

func NewContestDAO(db *gorm.DB) *ContestDAO {
	return &ContestDAO{
		db: db,
	}
}

func (d *ContestDAO) Insert(ctx context.Context, contest Contest) (Contest, error) {
	contest.Status = ContestActive
	contest.SelectedPhotoID = nil
	contest.CompletedAt = nil

	result := d.db.WithContext(ctx).Omit("User").Create(&contest)
	if result.Error != nil {
		return Contest{}, result.Error
	}

	return contest, nil
}

func (d *ContestDAO) FindByID(ctx context.Context, id uint) (Contest, error) {
	var contest Contest

	result := d.db.WithContext(ctx).First(&contest, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Contest{}, ErrContestNotFound
		}

		return Contest{}, result.Error
	}

	return contest, nil
}

func (d *ContestDAO) List(ctx context.Context, filter ContestFilter) ([]Contest, error) {
	var contests []Contest

	query := d.db.WithContext(ctx).Model(&Contest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != 0 {
		query = query.Where("user_id = ?", filter.OwnerID)
	}

	result := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&contests)
	if result.Error != nil {
		return nil, result.Error
	}

	return contests, nil
}

// ListApplied returns the contests the user has submitted at least one photo to.
func (d *ContestDAO) ListApplied(ctx context.Context, userID uint, limit, offset int) ([]Contest, error) {
	var contests []Contest

	applied := d.db.Model(&ContestPhoto{}).Select("DISTINCT contest_id").Where("user_id = ?", userID)

	result := d.db.WithContext(ctx).
		Where("id IN (?)", applied).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&contests)
	if result.Error != nil {
		return nil, result.Error
	}

	return contests, nil
}

// CountPhotos returns the number of submissions per contest id. Contests without
// submissions are absent from the map.
func (d *ContestDAO) CountPhotos(ctx context.Context, contestIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(contestIDs))
	if len(contestIDs) == 0 {
		return counts, nil
	}

	var rows []photoCount
	result := d.db.WithContext(ctx).
		Model(&ContestPhoto{}).
		Select("contest_id, COUNT(*) AS count").
		Where("contest_id IN ?", contestIDs).
		Group("contest_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	for _, row := range rows {
		counts[row.ContestID] = row.Count
	}

	return counts, nil
}

// Update applies the patch to an active contest owned by callerID. The stake is never touched.
func (d *ContestDAO) Update(ctx context.Context, contestID, callerID uint, patch ContestPatch) (Contest, error) {
	var updated Contest

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contest, err := lockContest(tx, contestID)
		if err != nil {
			return err
		}
		if contest.UserID != callerID {
			return ErrNotContestOwner
		}
		if contest.Status != ContestActive {
			return ErrContestNotActive
		}

		changes := map[string]interface{}{}
		if patch.Title != nil {
			changes["title"] = *patch.Title
		}
		if patch.Description != nil {
			changes["description"] = *patch.Description
		}
		if patch.Deadline != nil {
			changes["deadline"] = *patch.Deadline
		}

		if len(changes) > 0 {
			if err = tx.Model(&Contest{}).Where("id = ?", contestID).Updates(changes).Error; err != nil {
				return err
			}
		}

		return tx.First(&updated, contestID).Error
	})
	if err != nil {
		return Contest{}, err
	}

	return updated, nil
}

// Cancel moves an active contest to cancelled. No points move.
func (d *ContestDAO) Cancel(ctx context.Context, contestID, callerID uint) (Contest, error) {
	var cancelled Contest

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contest, err := lockContest(tx, contestID)
		if err != nil {
			return err
		}
		if contest.UserID != callerID {
			return ErrNotContestOwner
		}

		result := tx.Model(&Contest{}).
			Where("id = ? AND status = ?", contestID, ContestActive).
			Update("status", ContestCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrContestNotActive
		}

		return tx.First(&cancelled, contestID).Error
	})
	if err != nil {
		return Contest{}, err
	}

	return cancelled, nil
}

// SelectWinner completes the contest and moves the stake from the owner to the
// author of the winning photo in a single transaction. The status update is
// conditional on the contest still being active, so of two concurrent calls
// only one can complete it.
func (d *ContestDAO) SelectWinner(ctx context.Context, contestID, photoID, callerID uint) (SelectionResult, error) {
	var res SelectionResult

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contest, err := lockContest(tx, contestID)
		if err != nil {
			return err
		}
		if contest.UserID != callerID {
			return ErrNotContestOwner
		}

		var photo ContestPhoto
		err = tx.Where("id = ? AND contest_id = ?", photoID, contestID).First(&photo).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContestPhotoNotFound
			}
			return err
		}

		if contest.Status != ContestActive {
			return ErrContestNotActive
		}

		var owner User
		if err = tx.First(&owner, contest.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDataIntegrity
			}
			return err
		}
		if owner.Points < contest.Points {
			return ErrInsufficientPoints
		}

		var winner User
		if err = tx.First(&winner, photo.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDataIntegrity
			}
			return err
		}

		now := time.Now().UTC()
		result := tx.Model(&Contest{}).
			Where("id = ? AND status = ?", contestID, ContestActive).
			Updates(map[string]interface{}{
				"status":            ContestCompleted,
				"selected_photo_id": photo.ID,
				"completed_at":      now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrContestNotActive
		}

		result = tx.Model(&User{}).
			Where("id = ? AND points >= ?", owner.ID, contest.Points).
			Updates(map[string]interface{}{
				"points":     gorm.Expr("points - ?", contest.Points),
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientPoints
		}

		result = tx.Model(&User{}).
			Where("id = ?", winner.ID).
			Updates(map[string]interface{}{
				"points":     gorm.Expr("points + ?", contest.Points),
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDataIntegrity
		}

		if err = tx.First(&res.Contest, contestID).Error; err != nil {
			return err
		}
		if err = tx.First(&owner, owner.ID).Error; err != nil {
			return err
		}
		if err = tx.First(&winner, winner.ID).Error; err != nil {
			return err
		}

		res.WinnerID = winner.ID
		res.OwnerPoints = owner.Points
		res.WinnerPoints = winner.Points

		return nil
	})
	if err != nil {
		return SelectionResult{}, err
	}

	return res, nil
}

// DeleteCompleted removes a completed contest and all of its submissions.
// beforeCommit receives the submissions being removed and runs inside the
// transaction; an error from it rolls every row deletion back.
func (d *ContestDAO) DeleteCompleted(ctx context.Context, contestID, callerID uint, beforeCommit func([]ContestPhoto) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contest, err := lockContest(tx, contestID)
		if err != nil {
			return err
		}
		if contest.UserID != callerID {
			return ErrNotContestOwner
		}
		if contest.Status != ContestCompleted {
			return ErrContestNotCompleted
		}

		var photos []ContestPhoto
		if err = tx.Where("contest_id = ?", contestID).Find(&photos).Error; err != nil {
			return err
		}

		if err = tx.Where("contest_id = ?", contestID).Delete(&ContestPhoto{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND status = ?", contestID, ContestCompleted).Delete(&Contest{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrContestNotCompleted
		}

		if beforeCommit != nil {
			return beforeCommit(photos)
		}

		return nil
	})
}

func lockContest(tx *gorm.DB, id uint) (Contest, error) {
	var contest Contest

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&contest, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Contest{}, ErrContestNotFound
		}
		return Contest{}, err
	}

	return contest, nil
}
