package entities

import (
	"time"
)

// Role identifiers are stable and relied upon by business logic,
// not just display labels.
const (
	RoleAdmin     uint = 2
	RoleLibrarian uint = 3
	RoleReader    uint = 4
)

// Loan status identifiers, same contract as roles.
const (
	StatusIssued   uint = 1
	StatusReturned uint = 2
	StatusOverdue  uint = 3
)

type Role struct {
	ID    uint          `gorm:"primaryKey" json:"id"`
	Name  string        `gorm:"uniqueIndex;size:16" json:"name"`
	Users []UserAccount `gorm:"foreignKey:RoleID" json:"-"`
}

type Status struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"uniqueIndex;size:10" json:"name"`
	Loans []Loan `gorm:"foreignKey:StatusID" json:"-"`
}

type Book struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"index;size:100" json:"title"`
	ISBN          string     `gorm:"uniqueIndex;size:13" json:"isbn"`
	PublishDate   *time.Time `json:"publish_date,omitempty"`
	AdmissionDate time.Time  `json:"admission_date"` // set once at creation, immutable
	Quantity      int        `gorm:"default:1" json:"quantity"`
	Rating        float64    `json:"rating"`

	Authors []Author `gorm:"many2many:book_authors;constraint:OnDelete:CASCADE" json:"authors,omitempty"`
	Loans   []Loan   `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

type Author struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"index;size:100" json:"name"`
	Books []Book `gorm:"many2many:book_authors;" json:"-"`
}

// BookAuthor is the join row between books and authors. Declared
// explicitly so the composite key is visible to migrations.
type BookAuthor struct {
	BookID   uint `gorm:"primaryKey" json:"book_id"`
	AuthorID uint `gorm:"primaryKey" json:"author_id"`
}

type Hall struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	LibraryName   string  `gorm:"size:100" json:"library_name"`
	HallName      string  `gorm:"size:30" json:"hall_name"`
	TotalCapacity int     `gorm:"default:1" json:"total_capacity"`
	TakenCapacity int     `gorm:"default:0" json:"taken_capacity"` // derived from profile counts, never client-writable
	Specification *string `json:"specification,omitempty"`

	Profiles []Profile `gorm:"foreignKey:HallID" json:"-"`
}

type UserAccount struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Login          string  `gorm:"uniqueIndex;size:48" json:"login"`
	HashedPassword string  `gorm:"size:255" json:"-"`
	RoleID         uint    `gorm:"index" json:"role_id"`
	Role           Role    `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	ProfileID      uint    `gorm:"index" json:"-"`
	Profile        Profile `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`

	Loans []Loan `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Profile holds the per-account demographic data. Its lifecycle is
// owned by the account: exactly one profile per account, removed with it.
type Profile struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FullName     string     `gorm:"size:65" json:"full_name"`
	Phone        string     `gorm:"size:20" json:"phone"`
	TicketNumber *string    `gorm:"size:20" json:"ticket_number,omitempty"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	Education    *string    `gorm:"size:127" json:"education,omitempty"`
	HallID       *uint      `gorm:"index" json:"hall_id,omitempty"`

	Hall *Hall `gorm:"foreignKey:HallID" json:"-"`
}

// Loan records one book issued to one user. The composite key means at
// most one loan row per (book, user) pair at a time.
type Loan struct {
	BookID        uint      `gorm:"primaryKey" json:"book_id"`
	UserID        uint      `gorm:"primaryKey" json:"user_id"`
	IssuanceDate  time.Time `json:"issuance_date"`
	DueDate       time.Time `gorm:"index" json:"due_date"`
	StatusID      uint      `gorm:"index" json:"status_id"`

	Book   Book        `gorm:"foreignKey:BookID" json:"-"`
	User   UserAccount `gorm:"foreignKey:UserID" json:"-"`
	Status Status      `gorm:"foreignKey:StatusID" json:"-"`
}

func (Role) TableName() string {
	return "roles"
}

func (Status) TableName() string {
	return "statuses"
}

func (Book) TableName() string {
	return "books"
}

func (Author) TableName() string {
	return "authors"
}

func (BookAuthor) TableName() string {
	return "book_authors"
}

func (Hall) TableName() string {
	return "halls"
}

func (UserAccount) TableName() string {
	return "user_accounts"
}

func (Profile) TableName() string {
	return "profiles"
}

func (Loan) TableName() string {
	return "loans"
}
