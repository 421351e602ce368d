// Package authors provides database operations for author records.
package authors

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/librarium/librarium/internal/entities"
)

var ErrAuthorNotFound = errors.New("author not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List() ([]entities.Author, error) {
	authors := []entities.Author{}
	err := r.db.Find(&authors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, nil
}

func (r *Repository) Get(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load author: %w", err)
	}
	return &author, nil
}

func (r *Repository) Create(name string) (*entities.Author, error) {
	author := entities.Author{Name: name}
	if err := r.db.Create(&author).Error; err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return &author, nil
}

func (r *Repository) Update(id uint, name string) error {
	result := r.db.Model(&entities.Author{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return fmt.Errorf("failed to update author: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAuthorNotFound
	}
	return nil
}

// Delete removes an author together with their book associations.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var author entities.Author
		err := tx.First(&author, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuthorNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load author: %w", err)
		}

		if err := tx.Where("author_id = ?", id).Delete(&entities.BookAuthor{}).Error; err != nil {
			return fmt.Errorf("failed to delete author links: %w", err)
		}
		if err := tx.Delete(&entities.Author{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete author: %w", err)
		}
		return nil
	})
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Author{}).Count(&count).Error
	return count, err
}
