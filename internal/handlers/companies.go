package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/SugiKent/attendance-system/internal/models"
	"github.com/SugiKent/attendance-system/internal/services"
	"github.com/SugiKent/attendance-system/pkg/errors"
	"github.com/SugiKent/attendance-system/pkg/response"
)

// CompanyHandler manages tenant administration endpoints.
type CompanyHandler struct {
	companies *services.CompanyService
}

func NewCompanyHandler(companies *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

type createCompanyRequest struct {
	Name     string          `json:"name" validate:"required,max=100"`
	LogoURL  string          `json:"logoUrl" validate:"omitempty,url"`
	Settings json.RawMessage `json:"settings"`
}

// POST /api/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	var req createCompanyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	company, err := h.companies.Create(requestContext(c), services.CreateCompanyInput{
		Name:     req.Name,
		LogoURL:  req.LogoURL,
		Settings: datatypes.JSON(req.Settings),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"company": company})
}

// GET /api/companies
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companies.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"companies": companies})
}

// GET /api/companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := c.Param("id")

	// Admins may only read their own company.
	if claims.Role != models.RoleSuperAdmin {
		if claims.CompanyID == nil || *claims.CompanyID != id {
			response.Error(c, errors.ErrForbidden)
			return
		}
	}

	company, err := h.companies.GetByID(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"company": company})
}

type updateCompanyRequest struct {
	Name     *string         `json:"name" validate:"omitempty,max=100"`
	LogoURL  *string         `json:"logoUrl" validate:"omitempty,url"`
	Settings json.RawMessage `json:"settings"`
}

// PATCH /api/companies/:id
func (h *CompanyHandler) Update(c *gin.Context) {
	var req updateCompanyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	company, err := h.companies.Update(requestContext(c), c.Param("id"), services.UpdateCompanyInput{
		Name:     req.Name,
		LogoURL:  req.LogoURL,
		Settings: datatypes.JSON(req.Settings),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"company": company})
}

// DELETE /api/companies/:id
func (h *CompanyHandler) Delete(c *gin.Context) {
	if err := h.companies.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Company deleted"})
}
