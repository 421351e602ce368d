// Package database owns the connection, migrations and seed data for
// the application's sqlite store.
package database

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/librarium/librarium/internal/entities"
)

var defaultRoles = []entities.Role{
	{ID: entities.RoleAdmin, Name: "Admin"},
	{ID: entities.RoleLibrarian, Name: "Librarian"},
	{ID: entities.RoleReader, Name: "Reader"},
}

var defaultStatuses = []entities.Status{
	{ID: entities.StatusIssued, Name: "Issued"},
	{ID: entities.StatusReturned, Name: "Returned"},
	{ID: entities.StatusOverdue, Name: "Overdue"},
}

type Database struct {
	DB  *gorm.DB
	log *logrus.Logger
}

func NewDatabase(dbPath string, log *logrus.Logger) (*Database, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Role{},
		&entities.Status{},
		&entities.Hall{},
		&entities.Profile{},
		&entities.UserAccount{},
		&entities.Author{},
		&entities.Book{},
		&entities.BookAuthor{},
		&entities.Loan{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db, log: log}

	if err := database.seedLookups(); err != nil {
		return nil, fmt.Errorf("failed to seed lookup tables: %w", err)
	}

	log.WithField("path", dbPath).Info("database initialized")

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// seedLookups inserts the fixed role and status rows if missing. Ids are
// stable and referenced by business logic, so rows are created with
// explicit primary keys.
func (d *Database) seedLookups() error {
	for _, role := range defaultRoles {
		var existing entities.Role
		result := d.DB.Where("id = ?", role.ID).First(&existing)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := d.DB.Create(&role).Error; err != nil {
				return fmt.Errorf("failed to create role %s: %w", role.Name, err)
			}
			d.log.WithField("role", role.Name).Info("created role")
		}
	}

	for _, status := range defaultStatuses {
		var existing entities.Status
		result := d.DB.Where("id = ?", status.ID).First(&existing)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := d.DB.Create(&status).Error; err != nil {
				return fmt.Errorf("failed to create status %s: %w", status.Name, err)
			}
			d.log.WithField("status", status.Name).Info("created status")
		}
	}

	return nil
}

// EnsureAdmin creates the initial administrator account when no account
// with that login exists yet. The password arrives already hashed so
// this package stays free of crypto concerns.
func (d *Database) EnsureAdmin(login, hashedPassword string) error {
	var existing entities.UserAccount
	err := d.DB.Where("login = ?", login).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	return d.DB.Transaction(func(tx *gorm.DB) error {
		profile := entities.Profile{
			FullName: "Administrator",
			Phone:    "+10000000000",
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create admin profile: %w", err)
		}

		account := entities.UserAccount{
			Login:          login,
			HashedPassword: hashedPassword,
			RoleID:         entities.RoleAdmin,
			ProfileID:      profile.ID,
		}
		if err := tx.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}

		d.log.WithField("login", login).Info("created initial admin account")
		return nil
	})
}
