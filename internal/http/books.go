package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/librarium/librarium/internal/database/books"
)

type BooksController struct {
	repo *books.Repository
	log  *logrus.Logger
}

func NewBooksController(repo *books.Repository, log *logrus.Logger) *BooksController {
	return &BooksController{repo: repo, log: log}
}

// GetAllBooks returns the catalogue.
// GET /api/books
func (bc *BooksController) GetAllBooks(c *gin.Context) {
	list, err := bc.repo.List()
	if err != nil {
		respondInternalError(c, bc.log, err, "list books")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetBook returns one book.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.repo.Get(id)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, bc.log, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook adds a book. The admission date is set server-side; any
// client-provided value is ignored.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req struct {
		Title       string     `json:"title" binding:"required,max=100"`
		ISBN        string     `json:"isbn" binding:"required,max=13"`
		PublishDate *time.Time `json:"publish_date"`
		Quantity    int        `json:"quantity"`
		Rating      float64    `json:"rating"`
		AuthorIDs   []uint     `json:"author_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and isbn (max 13 chars) are required")
		return
	}

	book, err := bc.repo.Create(books.CreateParams{
		Title:       req.Title,
		ISBN:        req.ISBN,
		PublishDate: req.PublishDate,
		Quantity:    req.Quantity,
		Rating:      req.Rating,
		AuthorIDs:   req.AuthorIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, books.ErrISBNTaken):
			respondConflict(c, err.Error())
		case errors.Is(err, books.ErrAuthorNotFound):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, bc.log, err, "create book")
		}
		return
	}
	respondCreated(c, book)
}

// UpdateBook applies a partial update; a non-null author_ids replaces
// the whole author set.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title       *string    `json:"title" binding:"omitempty,max=100"`
		ISBN        *string    `json:"isbn" binding:"omitempty,max=13"`
		PublishDate *time.Time `json:"publish_date"`
		Quantity    *int       `json:"quantity"`
		Rating      *float64   `json:"rating"`
		AuthorIDs   []uint     `json:"author_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid book payload")
		return
	}

	err := bc.repo.Update(id, books.UpdateParams{
		Title:       req.Title,
		ISBN:        req.ISBN,
		PublishDate: req.PublishDate,
		Quantity:    req.Quantity,
		Rating:      req.Rating,
		AuthorIDs:   req.AuthorIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, books.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, books.ErrISBNTaken):
			respondConflict(c, err.Error())
		case errors.Is(err, books.ErrAuthorNotFound):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, bc.log, err, "update book")
		}
		return
	}
	respondSuccess(c, "book updated")
}

// DeleteBook removes a book with its author links and loan records.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.repo.Delete(id); err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, bc.log, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}
