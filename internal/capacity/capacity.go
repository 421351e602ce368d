// Package capacity keeps hall occupancy figures consistent with the
// profiles actually assigned to each hall.
//
// TakenCapacity is a cached projection of a count over profile rows. It
// is always rederived by counting, never incremented or decremented, so
// a failed operation can never leave it drifted: rerunning Recompute
// repairs any inconsistency.
//
// Every function takes the caller's transaction handle. Guards and the
// writes they protect must share one atomic unit, so callers are
// expected to run the whole mutating operation inside a single
// gorm transaction and evaluate CanAssign within it.
package capacity

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/librarium/librarium/internal/entities"
)

// Occupancy returns the number of profiles currently assigned to the
// hall, optionally excluding one account's own seat.
func Occupancy(tx *gorm.DB, hallID uint, excludeAccountID *uint) (int64, error) {
	query := tx.Model(&entities.Profile{}).Where("hall_id = ?", hallID)
	if excludeAccountID != nil {
		query = query.Where(
			"id NOT IN (?)",
			tx.Model(&entities.UserAccount{}).Select("profile_id").Where("id = ?", *excludeAccountID),
		)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count hall occupants: %w", err)
	}
	return count, nil
}

// Recompute counts the profiles assigned to the hall and persists that
// count as the hall's TakenCapacity. No-op when the hall does not
// exist. Must be called after every operation that creates, moves or
// removes a hall assignment.
func Recompute(tx *gorm.DB, hallID uint) error {
	var hall entities.Hall
	err := tx.First(&hall, hallID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load hall %d: %w", hallID, err)
	}

	count, err := Occupancy(tx, hallID, nil)
	if err != nil {
		return err
	}

	if err := tx.Model(&hall).Update("taken_capacity", count).Error; err != nil {
		return fmt.Errorf("failed to update hall %d capacity: %w", hallID, err)
	}
	return nil
}

// CanAssign reports whether the hall has a free seat. When
// excludeAccountID is given, that account's own seat is not counted, so
// updating a reader without moving them is never rejected against
// themselves. Returns false when the hall does not exist.
func CanAssign(tx *gorm.DB, hallID uint, excludeAccountID *uint) (bool, error) {
	var hall entities.Hall
	err := tx.First(&hall, hallID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load hall %d: %w", hallID, err)
	}

	count, err := Occupancy(tx, hallID, excludeAccountID)
	if err != nil {
		return false, err
	}

	return count < int64(hall.TotalCapacity), nil
}
