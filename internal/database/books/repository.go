// Package books provides database operations for the book catalogue.
package books

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/librarium/librarium/internal/entities"
)

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrISBNTaken      = errors.New("a book with this ISBN already exists")
)

// CreateParams are the validated arguments for adding a book. The
// admission date is not among them: it is set by the repository at
// creation time and never changes afterwards.
type CreateParams struct {
	Title       string
	ISBN        string
	PublishDate *time.Time
	Quantity    int
	Rating      float64
	AuthorIDs   []uint
}

// UpdateParams carries the optional fields of a book update. A non-nil
// AuthorIDs replaces the whole author set.
type UpdateParams struct {
	Title       *string
	ISBN        *string
	PublishDate *time.Time
	Quantity    *int
	Rating      *float64
	AuthorIDs   []uint
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all books with their authors loaded.
func (r *Repository) List() ([]entities.Book, error) {
	books := []entities.Book{}
	err := r.db.Preload("Authors").Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// Get returns one book with its authors loaded.
func (r *Repository) Get(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Authors").First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book: %w", err)
	}
	return &book, nil
}

// Create adds a book and its author associations as one unit.
func (r *Repository) Create(params CreateParams) (*entities.Book, error) {
	quantity := params.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	var bookID uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.Book
		err := tx.Where("isbn = ?", params.ISBN).First(&existing).Error
		if err == nil {
			return ErrISBNTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check ISBN: %w", err)
		}

		if err := checkAuthorsExist(tx, params.AuthorIDs); err != nil {
			return err
		}

		book := entities.Book{
			Title:         params.Title,
			ISBN:          params.ISBN,
			PublishDate:   params.PublishDate,
			AdmissionDate: time.Now().UTC(),
			Quantity:      quantity,
			Rating:        params.Rating,
		}
		if err := tx.Create(&book).Error; err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}
		bookID = book.ID

		return replaceAuthors(tx, book.ID, params.AuthorIDs)
	})
	if err != nil {
		return nil, err
	}

	return r.Get(bookID)
}

// Update applies a partial update. The admission date is immutable and
// never written here.
func (r *Repository) Update(id uint, params UpdateParams) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		err := tx.First(&book, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load book: %w", err)
		}

		updates := map[string]any{}
		if params.Title != nil {
			updates["title"] = *params.Title
		}
		if params.ISBN != nil && *params.ISBN != book.ISBN {
			var existing entities.Book
			err := tx.Where("isbn = ? AND id <> ?", *params.ISBN, id).First(&existing).Error
			if err == nil {
				return ErrISBNTaken
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check ISBN: %w", err)
			}
			updates["isbn"] = *params.ISBN
		}
		if params.PublishDate != nil {
			updates["publish_date"] = *params.PublishDate
		}
		if params.Quantity != nil {
			updates["quantity"] = *params.Quantity
		}
		if params.Rating != nil {
			updates["rating"] = *params.Rating
		}

		if len(updates) > 0 {
			if err := tx.Model(&book).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update book: %w", err)
			}
		}

		if params.AuthorIDs != nil {
			if err := checkAuthorsExist(tx, params.AuthorIDs); err != nil {
				return err
			}
			if err := tx.Where("book_id = ?", id).Delete(&entities.BookAuthor{}).Error; err != nil {
				return fmt.Errorf("failed to clear book authors: %w", err)
			}
			if err := replaceAuthors(tx, id, params.AuthorIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a book, cascading to its author associations and its
// loan records.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		err := tx.First(&book, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load book: %w", err)
		}

		if err := tx.Where("book_id = ?", id).Delete(&entities.BookAuthor{}).Error; err != nil {
			return fmt.Errorf("failed to delete book authors: %w", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.Loan{}).Error; err != nil {
			return fmt.Errorf("failed to delete book loans: %w", err)
		}
		if err := tx.Delete(&entities.Book{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		return nil
	})
}

// Count returns the total number of books.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

func checkAuthorsExist(tx *gorm.DB, authorIDs []uint) error {
	if len(authorIDs) == 0 {
		return nil
	}
	var count int64
	err := tx.Model(&entities.Author{}).Where("id IN ?", authorIDs).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check authors: %w", err)
	}
	if count != int64(len(authorIDs)) {
		return ErrAuthorNotFound
	}
	return nil
}

func replaceAuthors(tx *gorm.DB, bookID uint, authorIDs []uint) error {
	for _, authorID := range authorIDs {
		row := entities.BookAuthor{BookID: bookID, AuthorID: authorID}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to link author %d: %w", authorID, err)
		}
	}
	return nil
}
