package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SugiKent/attendance-system/internal/models"
	"github.com/SugiKent/attendance-system/internal/services"
	"github.com/SugiKent/attendance-system/pkg/errors"
	"github.com/SugiKent/attendance-system/pkg/response"
)

// LeaveHandler manages leave request endpoints.
type LeaveHandler struct {
	leave *services.LeaveService
}

func NewLeaveHandler(leave *services.LeaveService) *LeaveHandler {
	return &LeaveHandler{leave: leave}
}

type createLeaveRequest struct {
	Type      string `json:"type" validate:"required,oneof=PAID SICK OTHER"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	Reason    string `json:"reason" validate:"omitempty,max=500"`
}

// POST /api/leave
func (h *LeaveHandler) Create(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createLeaveRequest
	if !bindAndValidate(c, &req) {
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		response.Error(c, errors.NewBadRequest("startDate must use the YYYY-MM-DD format"))
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		response.Error(c, errors.NewBadRequest("endDate must use the YYYY-MM-DD format"))
		return
	}

	request, err := h.leave.Create(requestContext(c), claims.UserID, services.CreateLeaveInput{
		Type:      models.LeaveType(req.Type),
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"request": request})
}

// GET /api/leave
func (h *LeaveHandler) List(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	requests, err := h.leave.ListForUser(requestContext(c), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"requests": requests})
}

// GET /api/leave/pending
func (h *LeaveHandler) ListPending(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	// SUPER_ADMIN sees every company's queue.
	companyID := claims.CompanyID
	if claims.Role == models.RoleSuperAdmin {
		companyID = nil
	}

	requests, err := h.leave.ListPending(requestContext(c), companyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"requests": requests})
}

type reviewLeaveRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

// POST /api/leave/:id/review
func (h *LeaveHandler) Review(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req reviewLeaveRequest
	if !bindAndValidate(c, &req) {
		return
	}

	request, err := h.leave.Review(requestContext(c), claims, c.Param("id"), req.Decision == "approve")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": request})
}
