// Package halls provides database operations for reading halls,
// enforcing the occupancy invariants on every mutation.
package halls

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/librarium/librarium/internal/capacity"
	"github.com/librarium/librarium/internal/entities"
)

var (
	ErrHallNotFound = errors.New("hall not found")
	ErrHallOccupied = errors.New("hall still has assigned readers")
	ErrBelowTaken   = errors.New("total capacity cannot be set below current occupancy")
)

// CreateParams are the arguments for adding a hall. There is no taken
// capacity among them: a new hall always starts empty, whatever the
// client sent.
type CreateParams struct {
	LibraryName   string
	HallName      string
	TotalCapacity int
	Specification *string
}

type UpdateParams struct {
	LibraryName   *string
	HallName      *string
	TotalCapacity *int
	Specification *string
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List() ([]entities.Hall, error) {
	halls := []entities.Hall{}
	err := r.db.Find(&halls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list halls: %w", err)
	}
	return halls, nil
}

func (r *Repository) Get(id uint) (*entities.Hall, error) {
	var hall entities.Hall
	err := r.db.First(&hall, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load hall: %w", err)
	}
	return &hall, nil
}

func (r *Repository) Create(params CreateParams) (*entities.Hall, error) {
	totalCapacity := params.TotalCapacity
	if totalCapacity <= 0 {
		totalCapacity = 1
	}

	hall := entities.Hall{
		LibraryName:   params.LibraryName,
		HallName:      params.HallName,
		TotalCapacity: totalCapacity,
		TakenCapacity: 0,
		Specification: params.Specification,
	}
	if err := r.db.Create(&hall).Error; err != nil {
		return nil, fmt.Errorf("failed to create hall: %w", err)
	}
	return &hall, nil
}

// Update applies a partial update. The occupancy figure is recomputed
// from profile counts inside the same transaction, never taken from
// input, and shrinking the total below current occupancy is rejected.
func (r *Repository) Update(id uint, params UpdateParams) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var hall entities.Hall
		err := tx.First(&hall, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHallNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load hall: %w", err)
		}

		occupancy, err := capacity.Occupancy(tx, id, nil)
		if err != nil {
			return err
		}

		updates := map[string]any{"taken_capacity": occupancy}
		if params.LibraryName != nil {
			updates["library_name"] = *params.LibraryName
		}
		if params.HallName != nil {
			updates["hall_name"] = *params.HallName
		}
		if params.TotalCapacity != nil {
			if int64(*params.TotalCapacity) < occupancy {
				return ErrBelowTaken
			}
			updates["total_capacity"] = *params.TotalCapacity
		}
		if params.Specification != nil {
			updates["specification"] = *params.Specification
		}

		if err := tx.Model(&hall).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update hall: %w", err)
		}
		return nil
	})
}

// Delete removes a hall, refusing while any profile still references it.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var hall entities.Hall
		err := tx.First(&hall, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHallNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load hall: %w", err)
		}

		occupancy, err := capacity.Occupancy(tx, id, nil)
		if err != nil {
			return err
		}
		if occupancy > 0 {
			return ErrHallOccupied
		}

		if err := tx.Delete(&entities.Hall{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete hall: %w", err)
		}
		return nil
	})
}
