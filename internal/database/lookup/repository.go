// Package lookup serves the fixed role and status tables.
package lookup

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/librarium/librarium/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Roles() ([]entities.Role, error) {
	roles := []entities.Role{}
	err := r.db.Order("id").Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (r *Repository) Statuses() ([]entities.Status, error) {
	statuses := []entities.Status{}
	err := r.db.Order("id").Find(&statuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	return statuses, nil
}
