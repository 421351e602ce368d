package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/librarium/librarium/internal/loans"
)

type LoansController struct {
	service *loans.Service
	log     *logrus.Logger
}

func NewLoansController(service *loans.Service, log *logrus.Logger) *LoansController {
	return &LoansController{service: service, log: log}
}

// GetAllLoans lists every loan. Like all loan read paths it sweeps
// overdue statuses first.
// GET /api/loans
func (lc *LoansController) GetAllLoans(c *gin.Context) {
	list, err := lc.service.List()
	if err != nil {
		respondInternalError(c, lc.log, err, "list loans")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetRecentLoans lists the latest issuances for the dashboard, newest
// first. An optional limit query parameter overrides the default count.
// GET /api/loans/recent
func (lc *LoansController) GetRecentLoans(c *gin.Context) {
	limit := loans.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	list, err := lc.service.Recent(limit)
	if err != nil {
		respondInternalError(c, lc.log, err, "list recent loans")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/loans/item/:bookId/:userId
func (lc *LoansController) GetLoan(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	loan, err := lc.service.Get(bookID, userID)
	if err != nil {
		if errors.Is(err, loans.ErrLoanNotFound) {
			respondNotFound(c, "loan")
			return
		}
		respondInternalError(c, lc.log, err, "get loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

// GET /api/loans/user/:userId
func (lc *LoansController) GetLoansByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	list, err := lc.service.ListByUser(userID)
	if err != nil {
		respondInternalError(c, lc.log, err, "list loans by user")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/loans/book/:bookId
func (lc *LoansController) GetLoansByBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	list, err := lc.service.ListByBook(bookID)
	if err != nil {
		respondInternalError(c, lc.log, err, "list loans by book")
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateLoan issues a book to a user. An existing loan for the same
// (book, user) pair is a conflict; renew by updating its due date
// instead.
// POST /api/loans
func (lc *LoansController) CreateLoan(c *gin.Context) {
	var req struct {
		BookID       uint      `json:"book_id" binding:"required"`
		UserID       uint      `json:"user_id" binding:"required"`
		IssuanceDate time.Time `json:"issuance_date" binding:"required"`
		DueDate      time.Time `json:"due_date" binding:"required"`
		StatusID     uint      `json:"status_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id, user_id, issuance_date, due_date and status_id are required")
		return
	}

	loan, err := lc.service.Issue(loans.IssueParams{
		BookID:       req.BookID,
		UserID:       req.UserID,
		IssuanceDate: req.IssuanceDate,
		DueDate:      req.DueDate,
		StatusID:     req.StatusID,
	})
	if err != nil {
		switch {
		case errors.Is(err, loans.ErrBookNotFound),
			errors.Is(err, loans.ErrUserNotFound),
			errors.Is(err, loans.ErrStatusNotFound):
			respondBadRequest(c, err.Error())
		case errors.Is(err, loans.ErrLoanExists):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, lc.log, err, "create loan")
		}
		return
	}
	respondCreated(c, loan)
}

// UpdateLoan edits the due date and/or status of a loan.
// PUT /api/loans/item/:bookId/:userId
func (lc *LoansController) UpdateLoan(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var req struct {
		DueDate  *time.Time `json:"due_date"`
		StatusID *uint      `json:"status_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid loan payload")
		return
	}

	err := lc.service.Update(bookID, userID, loans.UpdateParams{
		DueDate:  req.DueDate,
		StatusID: req.StatusID,
	})
	if err != nil {
		switch {
		case errors.Is(err, loans.ErrLoanNotFound):
			respondNotFound(c, "loan")
		case errors.Is(err, loans.ErrStatusNotFound):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, lc.log, err, "update loan")
		}
		return
	}
	respondSuccess(c, "loan updated")
}

// DELETE /api/loans/item/:bookId/:userId
func (lc *LoansController) DeleteLoan(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := lc.service.Delete(bookID, userID); err != nil {
		if errors.Is(err, loans.ErrLoanNotFound) {
			respondNotFound(c, "loan")
			return
		}
		respondInternalError(c, lc.log, err, "delete loan")
		return
	}
	respondSuccess(c, "loan deleted")
}
