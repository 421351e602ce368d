package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/librarium/librarium/internal/accounts"
	"github.com/librarium/librarium/internal/auth"
	"github.com/librarium/librarium/internal/config"
	"github.com/librarium/librarium/internal/database"
	"github.com/librarium/librarium/internal/database/authors"
	"github.com/librarium/librarium/internal/database/books"
	"github.com/librarium/librarium/internal/database/halls"
	"github.com/librarium/librarium/internal/database/lookup"
	"github.com/librarium/librarium/internal/loans"
)

// RouterConfig carries every dependency the router needs, so tests can
// assemble routers from partial fixtures.
type RouterConfig struct {
	Database    *database.Database
	Books       *books.Repository
	Authors     *authors.Repository
	Halls       *halls.Repository
	Lookup      *lookup.Repository
	Accounts    *accounts.Service
	Loans       *loans.Service
	AuthService *auth.Service
	AuthConfig  config.Auth
	Logger      *logrus.Logger
	Version     string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	authController := NewAuthController(cfg.AuthService, cfg.AuthConfig, log)
	router.POST("/api/auth/login", authController.Login)

	secret := []byte(cfg.AuthConfig.JWTSecret)

	// Any authenticated role: catalogue reads, lookup tables, logout.
	authed := router.Group("/api")
	authed.Use(auth.RequireAuth(secret))
	{
		booksController := NewBooksController(cfg.Books, log)
		authed.GET("/books", booksController.GetAllBooks)
		authed.GET("/books/:id", booksController.GetBook)

		authorsController := NewAuthorsController(cfg.Authors, log)
		authed.GET("/authors", authorsController.GetAllAuthors)
		authed.GET("/authors/:id", authorsController.GetAuthor)

		lookupController := NewLookupController(cfg.Lookup, log)
		authed.GET("/roles", lookupController.GetRoles)
		authed.GET("/statuses", lookupController.GetStatuses)

		authed.POST("/auth/logout", authController.Logout)
	}

	// Librarians and administrators: catalogue mutations, halls, loans,
	// dashboard.
	staff := router.Group("/api")
	staff.Use(auth.RequireAuth(secret), auth.RequireRoles("Admin", "Librarian"))
	{
		booksController := NewBooksController(cfg.Books, log)
		staff.POST("/books", booksController.CreateBook)
		staff.PUT("/books/:id", booksController.UpdateBook)
		staff.DELETE("/books/:id", booksController.DeleteBook)

		authorsController := NewAuthorsController(cfg.Authors, log)
		staff.POST("/authors", authorsController.CreateAuthor)
		staff.PUT("/authors/:id", authorsController.UpdateAuthor)
		staff.DELETE("/authors/:id", authorsController.DeleteAuthor)

		hallsController := NewHallsController(cfg.Halls, log)
		staff.GET("/halls", hallsController.GetAllHalls)
		staff.GET("/halls/:id", hallsController.GetHall)
		staff.POST("/halls", hallsController.CreateHall)
		staff.PUT("/halls/:id", hallsController.UpdateHall)
		staff.DELETE("/halls/:id", hallsController.DeleteHall)

		loansController := NewLoansController(cfg.Loans, log)
		staff.GET("/loans", loansController.GetAllLoans)
		staff.GET("/loans/recent", loansController.GetRecentLoans)
		staff.GET("/loans/user/:userId", loansController.GetLoansByUser)
		staff.GET("/loans/book/:bookId", loansController.GetLoansByBook)
		staff.GET("/loans/item/:bookId/:userId", loansController.GetLoan)
		staff.POST("/loans", loansController.CreateLoan)
		staff.PUT("/loans/item/:bookId/:userId", loansController.UpdateLoan)
		staff.DELETE("/loans/item/:bookId/:userId", loansController.DeleteLoan)

		dashboardController := NewDashboardController(cfg.Database.DB, cfg.Books, cfg.Authors, cfg.Loans, log)
		staff.GET("/dashboard/stats", dashboardController.GetStats)
	}

	// Administrators only: account management.
	admin := router.Group("/api")
	admin.Use(auth.RequireAuth(secret), auth.RequireRoles("Admin"))
	{
		usersController := NewUsersController(cfg.Accounts, log)
		admin.GET("/users", usersController.GetAllUsers)
		admin.GET("/users/:id", usersController.GetUser)
		admin.POST("/users", usersController.CreateUser)
		admin.PUT("/users/:id", usersController.UpdateUser)
		admin.DELETE("/users/:id", usersController.DeleteUser)
	}

	return router
}
