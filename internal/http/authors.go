package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/librarium/librarium/internal/database/authors"
)

type AuthorsController struct {
	repo *authors.Repository
	log  *logrus.Logger
}

func NewAuthorsController(repo *authors.Repository, log *logrus.Logger) *AuthorsController {
	return &AuthorsController{repo: repo, log: log}
}

// GET /api/authors
func (ac *AuthorsController) GetAllAuthors(c *gin.Context) {
	list, err := ac.repo.List()
	if err != nil {
		respondInternalError(c, ac.log, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/authors/:id
func (ac *AuthorsController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.repo.Get(id)
	if err != nil {
		if errors.Is(err, authors.ErrAuthorNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, ac.log, err, "get author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// POST /api/authors
func (ac *AuthorsController) CreateAuthor(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	author, err := ac.repo.Create(req.Name)
	if err != nil {
		respondInternalError(c, ac.log, err, "create author")
		return
	}
	respondCreated(c, author)
}

// PUT /api/authors/:id
func (ac *AuthorsController) UpdateAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	if err := ac.repo.Update(id, req.Name); err != nil {
		if errors.Is(err, authors.ErrAuthorNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, ac.log, err, "update author")
		return
	}
	respondSuccess(c, "author updated")
}

// DELETE /api/authors/:id
func (ac *AuthorsController) DeleteAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ac.repo.Delete(id); err != nil {
		if errors.Is(err, authors.ErrAuthorNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, ac.log, err, "delete author")
		return
	}
	respondSuccess(c, "author deleted")
}
