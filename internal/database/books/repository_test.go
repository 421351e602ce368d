package books

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/librarium/librarium/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Author{},
		&entities.BookAuthor{},
		&entities.Loan{},
	)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		os.Remove(dbPath)
	}
	return db, cleanup
}

func createTestAuthor(t *testing.T, db *gorm.DB, name string) *entities.Author {
	t.Helper()
	author := &entities.Author{Name: name}
	require.NoError(t, db.Create(author).Error)
	return author
}

func TestCreate_WithAuthors(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	a1 := createTestAuthor(t, db, "Arkady Strugatsky")
	a2 := createTestAuthor(t, db, "Boris Strugatsky")

	before := time.Now().UTC()
	book, err := repo.Create(CreateParams{
		Title:     "Roadside Picnic",
		ISBN:      "9780575070530",
		Quantity:  3,
		Rating:    4.8,
		AuthorIDs: []uint{a1.ID, a2.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Roadside Picnic", book.Title)
	assert.Equal(t, 3, book.Quantity)
	assert.Len(t, book.Authors, 2)
	assert.False(t, book.AdmissionDate.Before(before))
}

func TestCreate_UnknownAuthorRejected(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	_, err := repo.Create(CreateParams{
		Title:     "Ghost Book",
		ISBN:      "9780000000001",
		AuthorIDs: []uint{999},
	})
	assert.ErrorIs(t, err, ErrAuthorNotFound)

	// Rejection leaves no partial book behind.
	var count int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreate_DuplicateISBN(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	_, err := repo.Create(CreateParams{Title: "First", ISBN: "9780575070530"})
	require.NoError(t, err)

	_, err = repo.Create(CreateParams{Title: "Second", ISBN: "9780575070530"})
	assert.ErrorIs(t, err, ErrISBNTaken)
}

func TestCreate_NonPositiveQuantityDefaultsToOne(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	book, err := repo.Create(CreateParams{Title: "Single Copy", ISBN: "9780575070530"})
	require.NoError(t, err)
	assert.Equal(t, 1, book.Quantity)
}

func TestUpdate_AdmissionDateImmutable(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	book, err := repo.Create(CreateParams{Title: "Original", ISBN: "9780575070530"})
	require.NoError(t, err)
	admitted := book.AdmissionDate

	title := "Renamed"
	quantity := 10
	require.NoError(t, repo.Update(book.ID, UpdateParams{Title: &title, Quantity: &quantity}))

	updated, err := repo.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 10, updated.Quantity)
	assert.True(t, admitted.Equal(updated.AdmissionDate))
}

func TestUpdate_ReplacesAuthorSet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	a1 := createTestAuthor(t, db, "One")
	a2 := createTestAuthor(t, db, "Two")

	book, err := repo.Create(CreateParams{
		Title:     "Shifting Credits",
		ISBN:      "9780575070530",
		AuthorIDs: []uint{a1.ID},
	})
	require.NoError(t, err)

	require.NoError(t, repo.Update(book.ID, UpdateParams{AuthorIDs: []uint{a2.ID}}))

	updated, err := repo.Get(book.ID)
	require.NoError(t, err)
	require.Len(t, updated.Authors, 1)
	assert.Equal(t, a2.ID, updated.Authors[0].ID)
}

func TestUpdate_ISBNConflict(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	_, err := repo.Create(CreateParams{Title: "First", ISBN: "9780575070530"})
	require.NoError(t, err)
	second, err := repo.Create(CreateParams{Title: "Second", ISBN: "9780575070531"})
	require.NoError(t, err)

	taken := "9780575070530"
	err = repo.Update(second.ID, UpdateParams{ISBN: &taken})
	assert.ErrorIs(t, err, ErrISBNTaken)
}

func TestDelete_CascadesToLinksAndLoans(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	author := createTestAuthor(t, db, "Author")

	book, err := repo.Create(CreateParams{
		Title:     "Short Lived",
		ISBN:      "9780575070530",
		AuthorIDs: []uint{author.ID},
	})
	require.NoError(t, err)

	loan := entities.Loan{
		BookID:       book.ID,
		UserID:       1,
		IssuanceDate: time.Now().UTC(),
		DueDate:      time.Now().UTC().AddDate(0, 0, 14),
		StatusID:     entities.StatusIssued,
	}
	require.NoError(t, db.Create(&loan).Error)

	require.NoError(t, repo.Delete(book.ID))

	_, err = repo.Get(book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	var links, loans int64
	require.NoError(t, db.Model(&entities.BookAuthor{}).Where("book_id = ?", book.ID).Count(&links).Error)
	require.NoError(t, db.Model(&entities.Loan{}).Where("book_id = ?", book.ID).Count(&loans).Error)
	assert.Zero(t, links)
	assert.Zero(t, loans)

	// The author itself survives.
	var authors int64
	require.NoError(t, db.Model(&entities.Author{}).Count(&authors).Error)
	assert.EqualValues(t, 1, authors)
}

func TestDelete_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	err := repo.Delete(999)
	assert.ErrorIs(t, err, ErrBookNotFound)
}
