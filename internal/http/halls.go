package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/librarium/librarium/internal/database/halls"
)

type HallsController struct {
	repo *halls.Repository
	log  *logrus.Logger
}

func NewHallsController(repo *halls.Repository, log *logrus.Logger) *HallsController {
	return &HallsController{repo: repo, log: log}
}

// GET /api/halls
func (hc *HallsController) GetAllHalls(c *gin.Context) {
	list, err := hc.repo.List()
	if err != nil {
		respondInternalError(c, hc.log, err, "list halls")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/halls/:id
func (hc *HallsController) GetHall(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	hall, err := hc.repo.Get(id)
	if err != nil {
		if errors.Is(err, halls.ErrHallNotFound) {
			respondNotFound(c, "hall")
			return
		}
		respondInternalError(c, hc.log, err, "get hall")
		return
	}
	c.JSON(http.StatusOK, hall)
}

// CreateHall adds a hall. A new hall always starts with zero occupancy
// whatever the client sent.
// POST /api/halls
func (hc *HallsController) CreateHall(c *gin.Context) {
	var req struct {
		LibraryName   string  `json:"library_name" binding:"required,max=100"`
		HallName      string  `json:"hall_name" binding:"required,max=30"`
		TotalCapacity int     `json:"total_capacity"`
		Specification *string `json:"specification"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "library_name and hall_name are required")
		return
	}

	hall, err := hc.repo.Create(halls.CreateParams{
		LibraryName:   req.LibraryName,
		HallName:      req.HallName,
		TotalCapacity: req.TotalCapacity,
		Specification: req.Specification,
	})
	if err != nil {
		respondInternalError(c, hc.log, err, "create hall")
		return
	}
	respondCreated(c, hall)
}

// UpdateHall applies a partial update. The occupancy figure is always
// recomputed server-side; shrinking total capacity below current
// occupancy is rejected.
// PUT /api/halls/:id
func (hc *HallsController) UpdateHall(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		LibraryName   *string `json:"library_name" binding:"omitempty,max=100"`
		HallName      *string `json:"hall_name" binding:"omitempty,max=30"`
		TotalCapacity *int    `json:"total_capacity"`
		Specification *string `json:"specification"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid hall payload")
		return
	}

	err := hc.repo.Update(id, halls.UpdateParams{
		LibraryName:   req.LibraryName,
		HallName:      req.HallName,
		TotalCapacity: req.TotalCapacity,
		Specification: req.Specification,
	})
	if err != nil {
		switch {
		case errors.Is(err, halls.ErrHallNotFound):
			respondNotFound(c, "hall")
		case errors.Is(err, halls.ErrBelowTaken):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, hc.log, err, "update hall")
		}
		return
	}
	respondSuccess(c, "hall updated")
}

// DELETE /api/halls/:id
func (hc *HallsController) DeleteHall(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := hc.repo.Delete(id); err != nil {
		switch {
		case errors.Is(err, halls.ErrHallNotFound):
			respondNotFound(c, "hall")
		case errors.Is(err, halls.ErrHallOccupied):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, hc.log, err, "delete hall")
		}
		return
	}
	respondSuccess(c, "hall deleted")
}
