// Package loans implements the loan lifecycle: issue validation, status
// transitions and the lazy overdue sweep.
//
// There is no background process. Every read path runs SweepOverdue
// first, inside its own transaction, so a caller never observes a loan
// whose due date has passed still reporting "Issued" from that same
// request. Staleness between reads is bounded only by request
// frequency.
package loans

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/librarium/librarium/internal/entities"
)

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrStatusNotFound = errors.New("status not found")
	ErrLoanNotFound   = errors.New("loan not found")
	ErrLoanExists     = errors.New("an active loan already exists for this book and user")
)

// Clock supplies the current date for overdue comparison. Injected so
// tests can pin dates deterministically.
type Clock interface {
	// Today returns the current date at UTC midnight. Time of day is
	// never compared.
	Today() time.Time
}

// UTCClock is the production clock.
type UTCClock struct{}

func (UTCClock) Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// Loan is the read model returned by listing operations, carrying the
// joined display fields alongside the row itself.
type Loan struct {
	BookID       uint      `json:"book_id"`
	UserID       uint      `json:"user_id"`
	IssuanceDate time.Time `json:"issuance_date"`
	DueDate      time.Time `json:"due_date"`
	StatusID     uint      `json:"status_id"`
	BookTitle    string    `json:"book_title"`
	UserLogin    string    `json:"user_login"`
	StatusName   string    `json:"status_name"`
}

// IssueParams are the validated arguments for issuing a book.
type IssueParams struct {
	BookID       uint
	UserID       uint
	IssuanceDate time.Time
	DueDate      time.Time
	StatusID     uint
}

// UpdateParams carries the optional fields of a loan update.
type UpdateParams struct {
	DueDate  *time.Time
	StatusID *uint
}

type Service struct {
	db    *gorm.DB
	clock Clock
	log   *logrus.Logger
}

func NewService(db *gorm.DB, clock Clock, log *logrus.Logger) *Service {
	if clock == nil {
		clock = UTCClock{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{db: db, clock: clock, log: log}
}

// Issue creates a loan row after validating every referenced entity.
// Re-issuing the same book to the same user while a loan row for that
// pair exists is rejected as a conflict; renewing is done by updating
// the existing row's due date instead.
func (s *Service) Issue(params IssueParams) (*Loan, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := requireExists(tx, &entities.Book{}, params.BookID, ErrBookNotFound); err != nil {
			return err
		}
		if err := requireExists(tx, &entities.UserAccount{}, params.UserID, ErrUserNotFound); err != nil {
			return err
		}
		if err := requireExists(tx, &entities.Status{}, params.StatusID, ErrStatusNotFound); err != nil {
			return err
		}

		var existing entities.Loan
		err := tx.Where("book_id = ? AND user_id = ?", params.BookID, params.UserID).First(&existing).Error
		if err == nil {
			return ErrLoanExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing loan: %w", err)
		}

		loan := entities.Loan{
			BookID:       params.BookID,
			UserID:       params.UserID,
			IssuanceDate: params.IssuanceDate,
			DueDate:      params.DueDate,
			StatusID:     params.StatusID,
		}
		if err := tx.Create(&loan).Error; err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(params.BookID, params.UserID)
}

// SweepOverdue reclassifies every loan that is still "Issued" past its
// due date as "Overdue", in one batch. Returned loans are never
// touched. The comparison is strict: a loan due today is not overdue.
func (s *Service) SweepOverdue() error {
	today := s.clock.Today()

	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Loan{}).
			Where("status_id = ? AND due_date < ?", entities.StatusIssued, today).
			Update("status_id", entities.StatusOverdue)
		if result.Error != nil {
			return fmt.Errorf("failed to sweep overdue loans: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			s.log.WithField("count", result.RowsAffected).Info("reclassified overdue loans")
		}
		return nil
	})
}

// Get returns one loan by its composite key. Sweeps first so a stale
// "Issued" row is never served.
func (s *Service) Get(bookID, userID uint) (*Loan, error) {
	if err := s.SweepOverdue(); err != nil {
		return nil, err
	}

	var loan Loan
	err := s.readQuery().
		Where("loans.book_id = ? AND loans.user_id = ?", bookID, userID).
		Take(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLoanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load loan: %w", err)
	}
	return &loan, nil
}

// List returns all loans, sweeping first.
func (s *Service) List() ([]Loan, error) {
	return s.list(nil)
}

// ListByUser returns the loans of one user, sweeping first.
func (s *Service) ListByUser(userID uint) ([]Loan, error) {
	return s.list(map[string]any{"loans.user_id": userID})
}

// ListByBook returns the loans of one book, sweeping first.
func (s *Service) ListByBook(bookID uint) ([]Loan, error) {
	return s.list(map[string]any{"loans.book_id": bookID})
}

// DefaultRecentLimit caps the dashboard's recent-loans listing when the
// caller does not ask for a specific count.
const DefaultRecentLimit = 5

// Recent returns the most recently issued loans, newest first, sweeping
// first like every other read path.
func (s *Service) Recent(limit int) ([]Loan, error) {
	if err := s.SweepOverdue(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	loans := []Loan{}
	err := s.readQuery().
		Order("loans.issuance_date DESC").
		Limit(limit).
		Scan(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent loans: %w", err)
	}
	return loans, nil
}

func (s *Service) list(filter map[string]any) ([]Loan, error) {
	if err := s.SweepOverdue(); err != nil {
		return nil, err
	}

	query := s.readQuery()
	if filter != nil {
		query = query.Where(filter)
	}

	loans := []Loan{}
	if err := query.Scan(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

// Update applies a partial update to a loan. A status change to
// "Returned" is legal from both "Issued" and "Overdue"; nothing moves a
// loan out of "Returned" implicitly.
func (s *Service) Update(bookID, userID uint, params UpdateParams) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var loan entities.Loan
		err := tx.Where("book_id = ? AND user_id = ?", bookID, userID).First(&loan).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLoanNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load loan: %w", err)
		}

		updates := map[string]any{}
		if params.DueDate != nil {
			updates["due_date"] = *params.DueDate
		}
		if params.StatusID != nil {
			if err := requireExists(tx, &entities.Status{}, *params.StatusID, ErrStatusNotFound); err != nil {
				return err
			}
			updates["status_id"] = *params.StatusID
		}
		if len(updates) == 0 {
			return nil
		}

		err = tx.Model(&entities.Loan{}).
			Where("book_id = ? AND user_id = ?", bookID, userID).
			Updates(updates).Error
		if err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		return nil
	})
}

// MarkReturned is a convenience wrapper for the explicit return
// transition.
func (s *Service) MarkReturned(bookID, userID uint) error {
	status := entities.StatusReturned
	return s.Update(bookID, userID, UpdateParams{StatusID: &status})
}

// Delete removes a loan row.
func (s *Service) Delete(bookID, userID uint) error {
	result := s.db.Where("book_id = ? AND user_id = ?", bookID, userID).Delete(&entities.Loan{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete loan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLoanNotFound
	}
	return nil
}

// CountOverdue returns the number of loans currently in "Overdue",
// sweeping first so the figure reflects the current date.
func (s *Service) CountOverdue() (int64, error) {
	if err := s.SweepOverdue(); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.Model(&entities.Loan{}).
		Where("status_id = ?", entities.StatusOverdue).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue loans: %w", err)
	}
	return count, nil
}

func (s *Service) readQuery() *gorm.DB {
	return s.db.Model(&entities.Loan{}).
		Select("loans.book_id, loans.user_id, loans.issuance_date, loans.due_date, loans.status_id, " +
			"books.title AS book_title, user_accounts.login AS user_login, statuses.name AS status_name").
		Joins("JOIN books ON books.id = loans.book_id").
		Joins("JOIN user_accounts ON user_accounts.id = loans.user_id").
		Joins("JOIN statuses ON statuses.id = loans.status_id")
}

func requireExists(tx *gorm.DB, model any, id uint, notFound error) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check referenced entity: %w", err)
	}
	if count == 0 {
		return notFound
	}
	return nil
}
