package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

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

type routerFixture struct {
	router *gin.Engine
	db     *database.Database
}

func setupTestRouter(t *testing.T) (*routerFixture, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	dbPath := "./test_router_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath, log)
	require.NoError(t, err)

	hashed, err := auth.HashPassword("admin-password", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.EnsureAdmin("admin", hashed))

	authCfg := config.Auth{
		JWTSecret:     "router-test-secret",
		TokenLifetime: time.Hour,
		BcryptCost:    bcrypt.MinCost,
	}

	router := NewRouter(RouterConfig{
		Database:    db,
		Books:       books.NewRepository(db.DB),
		Authors:     authors.NewRepository(db.DB),
		Halls:       halls.NewRepository(db.DB),
		Lookup:      lookup.NewRepository(db.DB),
		Accounts:    accounts.NewService(db.DB, auth.Hasher{Cost: bcrypt.MinCost}, log),
		Loans:       loans.NewService(db.DB, nil, log),
		AuthService: auth.NewService(db.DB, authCfg),
		AuthConfig:  authCfg,
		Logger:      log,
		Version:     "test",
	})

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return &routerFixture{router: router, db: db}, cleanup
}

func (f *routerFixture) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

// login authenticates and returns the access-token cookie.
func (f *routerFixture) login(t *testing.T, login, password string) *http.Cookie {
	t.Helper()

	resp := f.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"login":    login,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	t.Fatal("no access token cookie in login response")
	return nil
}

func TestLogin_SetsCookieAndReturnsRole(t *testing.T) {
	fixture, cleanup := setupTestRouter(t)
	defer cleanup()

	resp := fixture.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"login":    "admin",
		"password": "admin-password",
	}, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"role":"Admin"`)

	cookies := resp.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_BadCredentials(t *testing.T) {
	fixture, cleanup := setupTestRouter(t)
	defer cleanup()

	resp := fixture.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"login":    "admin",
		"password": "nope-nope-nope",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	fixture, cleanup := setupTestRouter(t)
	defer cleanup()

	for _, path := range []string{"/api/books", "/api/halls", "/api/users", "/api/loans"} {
		resp := fixture.do(t, http.MethodGet, path, nil, nil)
		assert.Equalf(t, http.StatusUnauthorized, resp.Code, "expected 401 on %s without a cookie", path)
	}
}

func TestUserManagement_AdminOnly(t *testing.T) {
	fixture, cleanup := setupTestRouter(t)
	defer cleanup()

	adminCookie := fixture.login(t, "admin", "admin-password")

	// Admin creates a librarian.
	resp := fixture.do(t, http.MethodPost, "/api/users", gin.H{
		"login":     "librarian1",
		"password":  "librarian-pass",
		"role_id":   3,
		"full_name": "Librarian One",
		"phone":     "+79001234567",
	}, adminCookie)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// The librarian can reach the catalogue but not user management.
	librarianCookie := fixture.login(t, "librarian1", "librarian-pass")

	resp = fixture.do(t, http.MethodGet, "/api/books", nil, librarianCookie)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = fixture.do(t, http.MethodGet, "/api/users", nil, librarianCookie)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestCatalogueAndLoanFlow(t *testing.T) {
	fixture, cleanup := setupTestRouter(t)
	defer cleanup()

	cookie := fixture.login(t, "admin", "admin-password")

	// Hall, author, book, reader.
	resp := fixture.do(t, http.MethodPost, "/api/halls", gin.H{
		"library_name":   "Central",
		"hall_name":      "Main",
		"total_capacity": 5,
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var hall struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &hall))

	resp = fixture.do(t, http.MethodPost, "/api/authors", gin.H{"name": "Stanislaw Lem"}, cookie)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var author struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &author))

	resp = fixture.do(t, http.MethodPost, "/api/books", gin.H{
		"title":      "Solaris",
		"isbn":       "9780156027601",
		"quantity":   2,
		"author_ids": []uint{author.ID},
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var book struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))

	resp = fixture.do(t, http.MethodPost, "/api/users", gin.H{
		"login":     "reader1",
		"password":  "reader-pass!",
		"role_id":   4,
		"full_name": "Reader One",
		"phone":     "+79001234567",
		"hall_id":   hall.ID,
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var reader struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reader))

	// Issue the book to the reader.
	issued := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	resp = fixture.do(t, http.MethodPost, "/api/loans", gin.H{
		"book_id":       book.ID,
		"user_id":       reader.ID,
		"issuance_date": issued,
		"due_date":      issued.AddDate(0, 0, 14),
		"status_id":     1,
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// A second identical loan is a conflict.
	resp = fixture.do(t, http.MethodPost, "/api/loans", gin.H{
		"book_id":       book.ID,
		"user_id":       reader.ID,
		"issuance_date": issued,
		"due_date":      issued.AddDate(0, 0, 14),
		"status_id":     1,
	}, cookie)
	assert.Equal(t, http.StatusConflict, resp.Code)

	// The loan lists under both its user and its book.
	resp = fixture.do(t, http.MethodGet, "/api/loans", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Solaris")
	assert.Contains(t, resp.Body.String(), "reader1")

	// And on the recent listing feeding the dashboard.
	resp = fixture.do(t, http.MethodGet, "/api/loans/recent", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Solaris")

	resp = fixture.do(t, http.MethodGet, "/api/loans/recent?limit=bogus", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Return it.
	resp = fixture.do(t, http.MethodPut,
		"/api/loans/item/"+itoa(book.ID)+"/"+itoa(reader.ID),
		gin.H{"status_id": 2}, cookie)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Dashboard counts line up.
	resp = fixture.do(t, http.MethodGet, "/api/dashboard/stats", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)
	var stats DashboardStats
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.TotalBooks)
	assert.EqualValues(t, 1, stats.TotalAuthors)
	assert.EqualValues(t, 1, stats.TotalLoans)
	assert.EqualValues(t, 0, stats.OverdueLoans)
}

func TestHallCapacity_EnforcedOverHTTP(t *testing.T) {
	fixture, cleanup := setupTestRouter(t)
	defer cleanup()

	cookie := fixture.login(t, "admin", "admin-password")

	resp := fixture.do(t, http.MethodPost, "/api/halls", gin.H{
		"library_name":   "Central",
		"hall_name":      "Tiny",
		"total_capacity": 1,
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var hall struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &hall))

	newReader := func(login string) *httptest.ResponseRecorder {
		return fixture.do(t, http.MethodPost, "/api/users", gin.H{
			"login":     login,
			"password":  "reader-pass!",
			"role_id":   4,
			"full_name": "Reader",
			"phone":     "+79001234567",
			"hall_id":   hall.ID,
		}, cookie)
	}

	require.Equal(t, http.StatusCreated, newReader("reader1").Code)

	resp = newReader("reader2")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "full")
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
