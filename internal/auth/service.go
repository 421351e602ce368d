// Package auth handles credentials, access tokens and role-gated
// request middleware.
package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/librarium/librarium/internal/config"
	"github.com/librarium/librarium/internal/entities"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates accounts and issues access tokens.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{db: db, config: cfg}
}

// Login verifies the credentials and returns a signed access token plus
// the account's role name.
func (s *Service) Login(login, password string) (token string, role string, err error) {
	var account entities.UserAccount
	dbErr := s.db.Preload("Role").Where("login = ?", login).First(&account).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return "", "", ErrInvalidCredentials
	}
	if dbErr != nil {
		return "", "", fmt.Errorf("failed to load account: %w", dbErr)
	}

	if err := CheckPassword(password, account.HashedPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}

	token, err = IssueToken(
		[]byte(s.config.JWTSecret),
		s.config.TokenLifetime,
		account.ID,
		account.Login,
		account.Role.Name,
	)
	if err != nil {
		return "", "", err
	}
	return token, account.Role.Name, nil
}
