package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/librarium/librarium/internal/accounts"
	"github.com/librarium/librarium/internal/auth"
)

type UsersController struct {
	service *accounts.Service
	log     *logrus.Logger
}

func NewUsersController(service *accounts.Service, log *logrus.Logger) *UsersController {
	return &UsersController{service: service, log: log}
}

// GET /api/users
func (uc *UsersController) GetAllUsers(c *gin.Context) {
	list, err := uc.service.List()
	if err != nil {
		respondInternalError(c, uc.log, err, "list users")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/users/:id
func (uc *UsersController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	account, err := uc.service.Get(id)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, uc.log, err, "get user")
		return
	}
	c.JSON(http.StatusOK, account)
}

// CreateUser creates an account plus profile. A reader requesting a
// hall is rejected when the hall has no free seat.
// POST /api/users
func (uc *UsersController) CreateUser(c *gin.Context) {
	var req struct {
		Login        string     `json:"login" binding:"required,max=48"`
		Password     string     `json:"password" binding:"required"`
		RoleID       uint       `json:"role_id" binding:"required"`
		FullName     string     `json:"full_name" binding:"required,max=65"`
		Phone        string     `json:"phone" binding:"required,max=20"`
		TicketNumber *string    `json:"ticket_number" binding:"omitempty,max=20"`
		Birthday     *time.Time `json:"birthday"`
		Education    *string    `json:"education" binding:"omitempty,max=127"`
		HallID       *uint      `json:"hall_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "login, password, role_id, full_name and phone are required")
		return
	}

	account, err := uc.service.Create(accounts.CreateParams{
		Login:        req.Login,
		Password:     req.Password,
		RoleID:       req.RoleID,
		FullName:     req.FullName,
		Phone:        req.Phone,
		TicketNumber: req.TicketNumber,
		Birthday:     req.Birthday,
		Education:    req.Education,
		HallID:       req.HallID,
	})
	if err != nil {
		uc.respondAccountError(c, err, "create user")
		return
	}
	respondCreated(c, account)
}

// PUT /api/users/:id
func (uc *UsersController) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Login        *string    `json:"login" binding:"omitempty,max=48"`
		Password     *string    `json:"password"`
		FullName     *string    `json:"full_name" binding:"omitempty,max=65"`
		Phone        *string    `json:"phone" binding:"omitempty,max=20"`
		TicketNumber *string    `json:"ticket_number" binding:"omitempty,max=20"`
		Birthday     *time.Time `json:"birthday"`
		Education    *string    `json:"education" binding:"omitempty,max=127"`
		HallID       *uint      `json:"hall_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid user payload")
		return
	}

	err := uc.service.Update(id, accounts.UpdateParams{
		Login:        req.Login,
		Password:     req.Password,
		FullName:     req.FullName,
		Phone:        req.Phone,
		TicketNumber: req.TicketNumber,
		Birthday:     req.Birthday,
		Education:    req.Education,
		HallID:       req.HallID,
	})
	if err != nil {
		uc.respondAccountError(c, err, "update user")
		return
	}
	respondSuccess(c, "user updated")
}

// DELETE /api/users/:id
func (uc *UsersController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := uc.service.Delete(id); err != nil {
		uc.respondAccountError(c, err, "delete user")
		return
	}
	respondSuccess(c, "user deleted")
}

func (uc *UsersController) respondAccountError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound):
		respondNotFound(c, "user")
	case errors.Is(err, accounts.ErrRoleNotFound):
		respondBadRequest(c, err.Error())
	case errors.Is(err, accounts.ErrHallNotFound):
		respondBadRequest(c, err.Error())
	case errors.Is(err, accounts.ErrHallFull):
		respondBadRequest(c, err.Error())
	case errors.Is(err, accounts.ErrLastAdmin):
		respondBadRequest(c, err.Error())
	case errors.Is(err, accounts.ErrLoginTaken):
		respondConflict(c, err.Error())
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, uc.log, err, op)
	}
}
