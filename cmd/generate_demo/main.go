// Command generate_demo creates a demo database with a small library:
// halls, public domain books, reader accounts and a few loans.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/librarium/librarium/internal/accounts"
	"github.com/librarium/librarium/internal/auth"
	"github.com/librarium/librarium/internal/database"
	"github.com/librarium/librarium/internal/database/authors"
	"github.com/librarium/librarium/internal/database/books"
	"github.com/librarium/librarium/internal/database/halls"
	"github.com/librarium/librarium/internal/entities"
	"github.com/librarium/librarium/internal/loans"
)

const defaultDemoDatabasePath = "./demo/demo.db"

// Every demo account logs in with this password.
const demoPassword = "demo-password"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	log.WithField("path", *dbPath).Info("generating demo database")

	// Start fresh every run.
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Fatal("failed to remove existing demo database")
	}

	db, err := database.NewDatabase(*dbPath, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create database")
	}
	defer db.Close()

	hashed, err := auth.HashPassword(demoPassword, bcrypt.MinCost)
	if err != nil {
		log.WithError(err).Fatal("failed to hash demo password")
	}
	if err := db.EnsureAdmin("admin", hashed); err != nil {
		log.WithError(err).Fatal("failed to create admin account")
	}

	hallIDs := createHalls(db, log)
	bookIDs := createCatalogue(db, log)
	readerIDs := createAccounts(db, log, hallIDs)
	createLoans(db, log, bookIDs, readerIDs)

	log.Info("demo database generated")
}

func createHalls(db *database.Database, log *logrus.Logger) []uint {
	repo := halls.NewRepository(db.DB)

	spec := "Quiet study hall"
	configs := []halls.CreateParams{
		{LibraryName: "Central Library", HallName: "Reading Room", TotalCapacity: 40},
		{LibraryName: "Central Library", HallName: "Study Hall", TotalCapacity: 20, Specification: &spec},
		{LibraryName: "East Branch", HallName: "Main Hall", TotalCapacity: 25},
	}

	ids := make([]uint, 0, len(configs))
	for _, cfg := range configs {
		hall, err := repo.Create(cfg)
		if err != nil {
			log.WithError(err).WithField("hall", cfg.HallName).Error("failed to create hall")
			continue
		}
		ids = append(ids, hall.ID)
	}
	return ids
}

type demoBook struct {
	title     string
	isbn      string
	author    string
	published int
	quantity  int
	rating    float64
}

func createCatalogue(db *database.Database, log *logrus.Logger) []uint {
	authorsRepo := authors.NewRepository(db.DB)
	booksRepo := books.NewRepository(db.DB)

	catalogue := []demoBook{
		{"Meditations", "9780140449334", "Marcus Aurelius", 180, 3, 4.8},
		{"The Art of War", "9781590302255", "Sun Tzu", -500, 2, 4.5},
		{"Walden", "9780691096124", "Henry David Thoreau", 1854, 2, 4.2},
		{"Frankenstein", "9780486282114", "Mary Shelley", 1818, 4, 4.6},
		{"The Time Machine", "9780451528551", "H. G. Wells", 1895, 2, 4.3},
		{"Crime and Punishment", "9780486415871", "Fyodor Dostoevsky", 1866, 3, 4.9},
	}

	ids := make([]uint, 0, len(catalogue))
	for _, item := range catalogue {
		author, err := authorsRepo.Create(item.author)
		if err != nil {
			log.WithError(err).WithField("author", item.author).Error("failed to create author")
			continue
		}

		var publishDate *time.Time
		if item.published > 0 {
			d := time.Date(item.published, 1, 1, 0, 0, 0, 0, time.UTC)
			publishDate = &d
		}

		book, err := booksRepo.Create(books.CreateParams{
			Title:       item.title,
			ISBN:        item.isbn,
			PublishDate: publishDate,
			Quantity:    item.quantity,
			Rating:      item.rating,
			AuthorIDs:   []uint{author.ID},
		})
		if err != nil {
			log.WithError(err).WithField("title", item.title).Error("failed to create book")
			continue
		}
		ids = append(ids, book.ID)
	}
	return ids
}

func createAccounts(db *database.Database, log *logrus.Logger, hallIDs []uint) []uint {
	svc := accounts.NewService(db.DB, auth.Hasher{Cost: bcrypt.MinCost}, log)

	librarian := accounts.CreateParams{
		Login:    "librarian",
		Password: demoPassword,
		RoleID:   entities.RoleLibrarian,
		FullName: "Default Librarian",
		Phone:    "+10000000001",
	}
	if _, err := svc.Create(librarian); err != nil {
		log.WithError(err).Error("failed to create librarian account")
	}

	readers := []struct {
		login, name, ticket string
	}{
		{"reader_anna", "Anna Karlsson", "T-1001"},
		{"reader_boris", "Boris Ivanov", "T-1002"},
		{"reader_clara", "Clara Schmidt", "T-1003"},
		{"reader_dmitry", "Dmitry Petrov", "T-1004"},
	}

	ids := make([]uint, 0, len(readers))
	for i, r := range readers {
		ticket := r.ticket
		params := accounts.CreateParams{
			Login:        r.login,
			Password:     demoPassword,
			RoleID:       entities.RoleReader,
			FullName:     r.name,
			Phone:        "+10000000002",
			TicketNumber: &ticket,
		}
		if len(hallIDs) > 0 {
			hallID := hallIDs[i%len(hallIDs)]
			params.HallID = &hallID
		}

		account, err := svc.Create(params)
		if err != nil {
			log.WithError(err).WithField("login", r.login).Error("failed to create reader account")
			continue
		}
		ids = append(ids, account.ID)
	}
	return ids
}

func createLoans(db *database.Database, log *logrus.Logger, bookIDs, readerIDs []uint) {
	if len(bookIDs) == 0 || len(readerIDs) == 0 {
		return
	}

	svc := loans.NewService(db.DB, nil, log)
	today := time.Now().UTC().Truncate(24 * time.Hour)

	configs := []struct {
		book, reader  int
		issuedDaysAgo int
		loanDays      int
	}{
		{0, 0, 3, 14},  // current
		{1, 1, 10, 14}, // current
		{2, 2, 30, 14}, // will surface as overdue
	}

	for _, cfg := range configs {
		if cfg.book >= len(bookIDs) || cfg.reader >= len(readerIDs) {
			continue
		}
		issued := today.AddDate(0, 0, -cfg.issuedDaysAgo)
		_, err := svc.Issue(loans.IssueParams{
			BookID:       bookIDs[cfg.book],
			UserID:       readerIDs[cfg.reader],
			IssuanceDate: issued,
			DueDate:      issued.AddDate(0, 0, cfg.loanDays),
			StatusID:     entities.StatusIssued,
		})
		if err != nil {
			log.WithError(err).Error("failed to issue demo loan")
		}
	}
}
