package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SugiKent/attendance-system/internal/services"
	"github.com/SugiKent/attendance-system/pkg/errors"
	"github.com/SugiKent/attendance-system/pkg/response"
)

// AttendanceHandler manages daily clock-in/out endpoints.
type AttendanceHandler struct {
	attendance *services.AttendanceService
}

func NewAttendanceHandler(attendance *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type clockRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

// POST /api/attendance/clock-in
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	req := clockRequest{}
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}

	record, err := h.attendance.ClockIn(requestContext(c), claims.UserID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"record": record})
}

// POST /api/attendance/clock-out
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	req := clockRequest{}
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}

	record, err := h.attendance.ClockOut(requestContext(c), claims.UserID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": record})
}

// GET /api/attendance?month=YYYY-MM
func (h *AttendanceHandler) List(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	month, err := monthQuery(c)
	if err != nil {
		response.Error(c, errors.NewBadRequest("month must use the YYYY-MM format"))
		return
	}

	records, err := h.attendance.ListForUser(requestContext(c), claims.UserID, month)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"records": records})
}

// GET /api/attendance/company?month=YYYY-MM
func (h *AttendanceHandler) ListCompany(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	if claims.CompanyID == nil {
		response.Error(c, errors.NewBadRequest("caller is not attached to a company"))
		return
	}

	month, err := monthQuery(c)
	if err != nil {
		response.Error(c, errors.NewBadRequest("month must use the YYYY-MM format"))
		return
	}

	records, err := h.attendance.ListForCompany(requestContext(c), *claims.CompanyID, month)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"records": records})
}
