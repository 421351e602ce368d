package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/librarium/librarium/internal/database/lookup"
)

// LookupController serves the fixed role and status tables.
type LookupController struct {
	repo *lookup.Repository
	log  *logrus.Logger
}

func NewLookupController(repo *lookup.Repository, log *logrus.Logger) *LookupController {
	return &LookupController{repo: repo, log: log}
}

// GET /api/roles
func (lc *LookupController) GetRoles(c *gin.Context) {
	roles, err := lc.repo.Roles()
	if err != nil {
		respondInternalError(c, lc.log, err, "list roles")
		return
	}
	c.JSON(http.StatusOK, roles)
}

// GET /api/statuses
func (lc *LookupController) GetStatuses(c *gin.Context) {
	statuses, err := lc.repo.Statuses()
	if err != nil {
		respondInternalError(c, lc.log, err, "list statuses")
		return
	}
	c.JSON(http.StatusOK, statuses)
}
