package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/librarium/librarium/internal/database/authors"
	"github.com/librarium/librarium/internal/database/books"
	"github.com/librarium/librarium/internal/entities"
	"github.com/librarium/librarium/internal/loans"
)

type DashboardStats struct {
	TotalBooks   int64 `json:"total_books"`
	TotalAuthors int64 `json:"total_authors"`
	TotalUsers   int64 `json:"total_users"`
	TotalLoans   int64 `json:"total_loans"`
	OverdueLoans int64 `json:"overdue_loans"`
}

type DashboardController struct {
	db      *gorm.DB
	books   *books.Repository
	authors *authors.Repository
	loanSvc *loans.Service
	log     *logrus.Logger
}

func NewDashboardController(db *gorm.DB, booksRepo *books.Repository, authorsRepo *authors.Repository, loanSvc *loans.Service, log *logrus.Logger) *DashboardController {
	return &DashboardController{
		db:      db,
		books:   booksRepo,
		authors: authorsRepo,
		loanSvc: loanSvc,
		log:     log,
	}
}

// GetStats returns totals for the dashboard. The overdue figure runs
// through the loan service so a sweep happens first and the count
// reflects the current date.
// GET /api/dashboard/stats
func (dc *DashboardController) GetStats(c *gin.Context) {
	overdue, err := dc.loanSvc.CountOverdue()
	if err != nil {
		respondInternalError(c, dc.log, err, "count overdue loans")
		return
	}

	stats := DashboardStats{OverdueLoans: overdue}

	if stats.TotalBooks, err = dc.books.Count(); err != nil {
		respondInternalError(c, dc.log, err, "count books")
		return
	}
	if stats.TotalAuthors, err = dc.authors.Count(); err != nil {
		respondInternalError(c, dc.log, err, "count authors")
		return
	}

	counts := []struct {
		model any
		dest  *int64
	}{
		{&entities.UserAccount{}, &stats.TotalUsers},
		{&entities.Loan{}, &stats.TotalLoans},
	}
	for _, count := range counts {
		if err := dc.db.Model(count.model).Count(count.dest).Error; err != nil {
			respondInternalError(c, dc.log, fmt.Errorf("failed to count rows: %w", err), "dashboard stats")
			return
		}
	}

	c.JSON(http.StatusOK, stats)
}
