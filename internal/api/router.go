package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/app"
	iauth "github.com/SugiKent/attendance-system/internal/auth"
	"github.com/SugiKent/attendance-system/internal/handlers"
	"github.com/SugiKent/attendance-system/internal/middleware"
	"github.com/SugiKent/attendance-system/internal/models"
	"github.com/SugiKent/attendance-system/internal/services"
	"github.com/SugiKent/attendance-system/pkg/mail"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, mailer mail.Mailer) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer must be provided")
	}

	sender, err := services.NewVerificationSender(mailer, cfg.Server.BaseURL, cfg.Server.AppName)
	if err != nil {
		return nil, err
	}

	authService, err := services.NewAuthService(db, jwt, sender)
	if err != nil {
		return nil, err
	}
	attendanceService, err := services.NewAttendanceService(db)
	if err != nil {
		return nil, err
	}
	leaveService, err := services.NewLeaveService(db)
	if err != nil {
		return nil, err
	}
	companyService, err := services.NewCompanyService(db)
	if err != nil {
		return nil, err
	}
	reportService, err := services.NewReportService(db)
	if err != nil {
		return nil, err
	}
	userAdminService, err := services.NewUserAdminService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORS.AllowedOrigins}))
	r.Use(middleware.RateLimit(rateOrDefault(cfg.RateLimit.Requests, 100), windowOrDefault(cfg.RateLimit.Window, time.Minute)))

	r.NoRoute(middleware.NotFoundHandler)

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(authService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	leaveHandler := handlers.NewLeaveHandler(leaveService)
	reportHandler := handlers.NewReportHandler(reportService)
	companyHandler := handlers.NewCompanyHandler(companyService)
	adminUserHandler := handlers.NewAdminUserHandler(userAdminService)

	requireAuth := middleware.Auth(jwt)
	requireAdmin := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	requireSuperAdmin := middleware.RequireRole(models.RoleSuperAdmin)

	// Credential endpoints get a stricter limiter than the rest of the API.
	authLimiter := middleware.RateLimit(rateOrDefault(cfg.RateLimit.AuthRequests, 10), windowOrDefault(cfg.RateLimit.AuthWindow, 15*time.Minute))

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/setup-admin", authHandler.SetupAdmin)
		auth.POST("/register", authLimiter, middleware.OptionalAuth(jwt), authHandler.Register)
		auth.POST("/login", authLimiter, authHandler.Login)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.POST("/resend-verification", authHandler.ResendVerification)
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)
	api.PUT("/auth/profile", authHandler.UpdateProfile)
	api.PUT("/auth/password", authHandler.ChangePassword)

	attendance := api.Group("/attendance")
	{
		attendance.POST("/clock-in", attendanceHandler.ClockIn)
		attendance.POST("/clock-out", attendanceHandler.ClockOut)
		attendance.GET("", attendanceHandler.List)
		attendance.GET("/company", requireAdmin, attendanceHandler.ListCompany)
	}

	leave := api.Group("/leave")
	{
		leave.POST("", leaveHandler.Create)
		leave.GET("", leaveHandler.List)
		leave.GET("/pending", requireAdmin, leaveHandler.ListPending)
		leave.POST("/:id/review", requireAdmin, leaveHandler.Review)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/monthly", reportHandler.Monthly)
		reports.GET("/company", requireAdmin, reportHandler.Company)
	}

	companies := api.Group("/companies")
	{
		companies.GET("", requireSuperAdmin, companyHandler.List)
		companies.POST("", requireSuperAdmin, companyHandler.Create)
		companies.GET("/:id", requireAdmin, companyHandler.Get)
		companies.PATCH("/:id", requireSuperAdmin, companyHandler.Update)
		companies.DELETE("/:id", requireSuperAdmin, companyHandler.Delete)
	}

	admin := api.Group("/admin")
	admin.Use(requireAdmin)
	{
		admin.GET("/users", adminUserHandler.List)
		admin.PATCH("/users/:id", adminUserHandler.Update)
		admin.DELETE("/users/:id", adminUserHandler.Delete)
	}

	return r, nil
}

func rateOrDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func windowOrDefault(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}
