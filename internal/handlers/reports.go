package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SugiKent/attendance-system/internal/services"
	"github.com/SugiKent/attendance-system/pkg/errors"
	"github.com/SugiKent/attendance-system/pkg/response"
)

// ReportHandler serves monthly attendance summaries.
type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GET /api/reports/monthly?month=YYYY-MM
func (h *ReportHandler) Monthly(c *gin.Context) {
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

	report, err := h.reports.MonthlyForUser(requestContext(c), claims.UserID, month)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

// GET /api/reports/company?month=YYYY-MM
func (h *ReportHandler) Company(c *gin.Context) {
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

	reports, err := h.reports.MonthlyForCompany(requestContext(c), *claims.CompanyID, month)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reports": reports})
}
