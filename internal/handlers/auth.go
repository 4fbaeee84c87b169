package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SugiKent/attendance-system/internal/services"
	"github.com/SugiKent/attendance-system/pkg/errors"
	"github.com/SugiKent/attendance-system/pkg/response"
)

// AuthHandler manages registration, login and the email verification flow.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,strongpassword"`
	Name      string  `json:"name" validate:"required,max=100"`
	CompanyID *string `json:"companyId" validate:"omitempty,uuid4"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.auth.Register(requestContext(c), callerClaims(c), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

type setupAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
	Name     string `json:"name" validate:"required,max=100"`
}

// POST /api/auth/setup-admin
func (h *AuthHandler) SetupAdmin(c *gin.Context) {
	var req setupAdminRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, token, err := h.auth.SetupAdmin(requestContext(c), services.SetupAdminInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, token, err := h.auth.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		// The unverified case carries the email so the client can offer
		// a resend action without a second round trip.
		if stderrors.Is(err, errors.ErrEmailNotVerified) {
			response.ErrorWithDetails(c, err, gin.H{"email": req.Email})
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user, "token": token})
}

type verifyEmailRequest struct {
	UserID string `json:"userId" validate:"required"`
	Token  string `json:"token" validate:"required"`
}

// POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, token, err := h.auth.VerifyEmail(requestContext(c), req.UserID, req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user, "token": token})
}

type resendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.auth.ResendVerification(requestContext(c), req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "If the address is registered, a verification email has been sent",
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.auth.CurrentUser(requestContext(c), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

type updateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.auth.UpdateProfile(requestContext(c), claims.UserID, services.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strongpassword"`
}

// PUT /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.auth.ChangePassword(requestContext(c), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password updated"})
}
