// Package accounts implements the account lifecycle rules: role-aware
// profile handling, the hall-capacity gate on reader assignments and
// the last-administrator guard.
//
// Every mutating operation runs as one gorm transaction. The capacity
// and admin-count guards are evaluated inside that transaction,
// immediately before the writes they protect, so two concurrent
// requests racing for the last free seat (or the last admin) serialize
// on the database write lock instead of both passing a stale check.
package accounts

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/librarium/librarium/internal/capacity"
	"github.com/librarium/librarium/internal/entities"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrRoleNotFound    = errors.New("role not found")
	ErrHallNotFound    = errors.New("hall not found")
	ErrHallFull        = errors.New("the selected hall is full")
	ErrLoginTaken      = errors.New("login is already taken")
	ErrLastAdmin       = errors.New("cannot delete the last administrator")
)

// PasswordHasher hashes plaintext passwords for storage. Satisfied by
// the auth package; declared here so this package stays crypto-free.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// CreateParams are the validated arguments for creating an account.
// Reader-only fields are ignored for non-reader roles.
type CreateParams struct {
	Login        string
	Password     string
	RoleID       uint
	FullName     string
	Phone        string
	TicketNumber *string
	Birthday     *time.Time
	Education    *string
	HallID       *uint
}

// UpdateParams carries the optional fields of an account update. Nil
// means "keep the current value".
type UpdateParams struct {
	Login        *string
	Password     *string
	FullName     *string
	Phone        *string
	TicketNumber *string
	Birthday     *time.Time
	Education    *string
	HallID       *uint
}

type Service struct {
	db     *gorm.DB
	hasher PasswordHasher
	log    *logrus.Logger
}

func NewService(db *gorm.DB, hasher PasswordHasher, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{db: db, hasher: hasher, log: log}
}

// List returns all accounts with role and profile loaded.
func (s *Service) List() ([]entities.UserAccount, error) {
	accounts := []entities.UserAccount{}
	err := s.db.Preload("Role").Preload("Profile").Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Get returns one account with role and profile loaded.
func (s *Service) Get(id uint) (*entities.UserAccount, error) {
	var account entities.UserAccount
	err := s.db.Preload("Role").Preload("Profile").First(&account, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &account, nil
}

// Create creates an account and its profile as one unit. A reader
// requesting a hall is gated on free capacity, and the hall's occupancy
// figure is recomputed after the write, all inside one transaction.
func (s *Service) Create(params CreateParams) (*entities.UserAccount, error) {
	switch params.RoleID {
	case entities.RoleAdmin, entities.RoleLibrarian, entities.RoleReader:
	default:
		return nil, ErrRoleNotFound
	}

	hashed, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var accountID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.UserAccount
		err := tx.Where("login = ?", params.Login).First(&existing).Error
		if err == nil {
			return ErrLoginTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check login: %w", err)
		}

		profile := buildProfile(params)

		if profile.HallID != nil {
			if err := s.checkHallHasSeat(tx, *profile.HallID, nil); err != nil {
				return err
			}
		}

		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		account := entities.UserAccount{
			Login:          params.Login,
			HashedPassword: hashed,
			RoleID:         params.RoleID,
			ProfileID:      profile.ID,
		}
		if err := tx.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		accountID = account.ID

		if profile.HallID != nil {
			if err := capacity.Recompute(tx, *profile.HallID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"login": params.Login, "role_id": params.RoleID}).Info("account created")
	return s.Get(accountID)
}

// Update applies a partial update. Moving a reader to another hall
// re-checks capacity against the new hall, excluding the reader's own
// current seat, and recomputes occupancy for both halls involved.
func (s *Service) Update(id uint, params UpdateParams) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var account entities.UserAccount
		err := tx.Preload("Profile").First(&account, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}

		oldHallID := account.Profile.HallID
		hallChanged := params.HallID != nil &&
			(oldHallID == nil || *params.HallID != *oldHallID)

		if account.RoleID == entities.RoleReader && hallChanged {
			if err := s.checkHallHasSeat(tx, *params.HallID, &id); err != nil {
				return err
			}
		}

		if params.Login != nil && *params.Login != account.Login {
			var existing entities.UserAccount
			err := tx.Where("login = ? AND id <> ?", *params.Login, id).First(&existing).Error
			if err == nil {
				return ErrLoginTaken
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check login: %w", err)
			}
			account.Login = *params.Login
		}

		if params.Password != nil && *params.Password != "" {
			hashed, err := s.hasher.Hash(*params.Password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			account.HashedPassword = hashed
		}

		applyProfileUpdate(&account, params)

		if err := tx.Save(&account.Profile).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		if err := tx.Omit("Profile").Save(&account).Error; err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		// One seat may vacate and another fill; both halls get a fresh
		// count.
		if oldHallID != nil {
			if err := capacity.Recompute(tx, *oldHallID); err != nil {
				return err
			}
		}
		if hallChanged {
			if err := capacity.Recompute(tx, *params.HallID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an account and its profile, refusing to delete the
// last administrator, and frees the seat the account occupied.
func (s *Service) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var account entities.UserAccount
		err := tx.Preload("Profile").First(&account, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}

		if account.RoleID == entities.RoleAdmin {
			var remaining int64
			err := tx.Model(&entities.UserAccount{}).
				Where("role_id = ? AND id <> ?", entities.RoleAdmin, id).
				Count(&remaining).Error
			if err != nil {
				return fmt.Errorf("failed to count administrators: %w", err)
			}
			if remaining == 0 {
				return ErrLastAdmin
			}
		}

		hallID := account.Profile.HallID

		if err := tx.Delete(&entities.UserAccount{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		if err := tx.Delete(&entities.Profile{}, account.ProfileID).Error; err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}

		if hallID != nil {
			if err := capacity.Recompute(tx, *hallID); err != nil {
				return err
			}
		}

		s.log.WithField("login", account.Login).Info("account deleted")
		return nil
	})
}

func (s *Service) checkHallHasSeat(tx *gorm.DB, hallID uint, excludeAccountID *uint) error {
	var hall entities.Hall
	err := tx.First(&hall, hallID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrHallNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load hall: %w", err)
	}

	ok, err := capacity.CanAssign(tx, hallID, excludeAccountID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrHallFull
	}
	return nil
}

// buildProfile assembles the profile for a new account. Which fields
// are honored depends on the role: readers carry ticket, birthday,
// education and a hall seat; administrators and librarians only a name
// and a phone.
func buildProfile(params CreateParams) entities.Profile {
	profile := entities.Profile{
		FullName: params.FullName,
		Phone:    params.Phone,
	}
	if params.RoleID == entities.RoleReader {
		profile.TicketNumber = params.TicketNumber
		profile.Birthday = params.Birthday
		profile.Education = params.Education
		profile.HallID = params.HallID
	}
	return profile
}

func applyProfileUpdate(account *entities.UserAccount, params UpdateParams) {
	profile := &account.Profile

	if params.FullName != nil {
		profile.FullName = *params.FullName
	}
	if params.Phone != nil {
		profile.Phone = *params.Phone
	}

	if account.RoleID != entities.RoleReader {
		return
	}

	if params.TicketNumber != nil {
		profile.TicketNumber = params.TicketNumber
	}
	if params.Birthday != nil {
		profile.Birthday = params.Birthday
	}
	if params.Education != nil {
		profile.Education = params.Education
	}
	if params.HallID != nil {
		profile.HallID = params.HallID
	}
}
