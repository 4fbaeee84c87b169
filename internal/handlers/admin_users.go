package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SugiKent/attendance-system/internal/models"
	"github.com/SugiKent/attendance-system/internal/services"
	"github.com/SugiKent/attendance-system/pkg/errors"
	"github.com/SugiKent/attendance-system/pkg/response"
)

// AdminUserHandler exposes the administrative user directory.
type AdminUserHandler struct {
	users *services.UserAdminService
}

func NewAdminUserHandler(users *services.UserAdminService) *AdminUserHandler {
	return &AdminUserHandler{users: users}
}

// GET /api/admin/users
func (h *AdminUserHandler) List(c *gin.Context) {
	users, err := h.users.List(requestContext(c), callerClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"users": users})
}

type updateUserRequest struct {
	Role      *string `json:"role" validate:"omitempty,oneof=EMPLOYEE ADMIN SUPER_ADMIN"`
	CompanyID *string `json:"companyId" validate:"omitempty,uuid4"`
}

// PATCH /api/admin/users/:id
func (h *AdminUserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.UpdateUserInput{CompanyID: req.CompanyID}
	if req.Role != nil {
		role := models.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.users.Update(requestContext(c), callerClaims(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// DELETE /api/admin/users/:id
func (h *AdminUserHandler) Delete(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.users.Delete(requestContext(c), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "User deleted"})
}
