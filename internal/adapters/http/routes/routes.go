package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"

	"residency-api/internal/adapters/http/handlers"
	"residency-api/internal/adapters/http/middleware"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/config"
	"residency-api/internal/core/domain"
	"residency-api/internal/core/services"
	"residency-api/internal/pkg/logger"
)

var (
	adminCommittee = []domain.Role{domain.RoleAdmin, domain.RoleCommittee}
	adminOnly      = []domain.Role{domain.RoleAdmin}
)

// Setup wires repositories, services and handlers and registers every
// route. It returns the scheduler so the caller controls its lifetime.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, log *logger.Logger) *services.SchedulerService {
	loc := cfg.Timezone

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	buildingRepo := repositories.NewBuildingRepository(db)
	maintenanceRepo := repositories.NewMaintenanceRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)
	fundRepo := repositories.NewFundRepository(db)
	noticeRepo := repositories.NewNoticeRepository(db)
	meetingRepo := repositories.NewMeetingRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)

	// Initialize services
	auditService := services.NewAuditService(auditRepo, log)
	notificationService := services.NewNotificationService(cfg.Notify, auditService, log)
	exportService := services.NewExportService(loc)

	authService := services.NewAuthService(userRepo, refreshTokenRepo, auditService, cfg, log)
	userService := services.NewUserService(userRepo, refreshTokenRepo, auditService, cfg.Society, log)
	propertyService := services.NewPropertyService(buildingRepo, userRepo, auditService)
	maintenanceService := services.NewMaintenanceService(
		maintenanceRepo,
		buildingRepo,
		userRepo,
		auditService,
		notificationService,
		exportService,
		cfg.Society.Penalty,
		loc,
		log,
	)
	expenseService := services.NewExpenseService(expenseRepo, auditService, exportService, loc)
	fundService := services.NewFundService(fundRepo, auditService, loc)
	noticeService := services.NewNoticeService(noticeRepo, auditService)
	meetingService := services.NewMeetingService(meetingRepo, notificationService, auditService, loc, log)
	bookingService := services.NewBookingService(bookingRepo, auditService, loc)
	dashboardService := services.NewDashboardService(
		userRepo,
		fundRepo,
		bookingRepo,
		maintenanceService,
		expenseService,
		noticeService,
		meetingService,
		bookingService,
		loc,
	)
	schedulerService := services.NewSchedulerService(cfg.Scheduler, loc, maintenanceService, authService, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.AppMode, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	fundHandler := handlers.NewFundHandler(fundService)
	noticeHandler := handlers.NewNoticeHandler(noticeService)
	meetingHandler := handlers.NewMeetingHandler(meetingService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	auditHandler := handlers.NewAuditHandler(auditService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/", healthHandler.APIInfo)

	auth := middleware.AuthMiddleware(authService)

	setupAuthRoutes(api.Group("/auth"), authHandler, auth)
	setupUserRoutes(api.Group("/users", auth), userHandler)
	setupProfileRoutes(api.Group("/profile", auth), userHandler)
	setupSocietyRoutes(api.Group("/society", auth), propertyHandler, noticeHandler, maintenanceHandler)
	setupExpenseRoutes(api.Group("/expenses", auth), expenseHandler)
	setupFundRoutes(api.Group("/funds", auth), fundHandler)
	setupMeetingRoutes(api.Group("/meetings", auth), meetingHandler)
	setupBookingRoutes(api.Group("/bookings", auth), bookingHandler)

	api.Get("/audit-logs", auth, middleware.RequirePermission(domain.PermViewAudit), auditHandler.List)
	api.Post("/notifications/broadcast", auth, middleware.RequirePermission(domain.PermPostNotices), notificationHandler.Broadcast)
	api.Get("/dashboard", auth, middleware.NoCacheHeaders(), dashboardHandler.Get)

	return schedulerService
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, auth fiber.Handler) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", auth, handler.Me)
	router.Post("/logout-all", auth, handler.LogoutAll)
}

// setupUserRoutes configures user management routes. Review access is
// decided by the approval policy inside the service.
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	manage := middleware.RequirePermission(domain.PermManageUsers)

	router.Get("/", manage, handler.ListUsers)
	router.Get("/pending", middleware.AdminOrCommittee(), handler.ListPending)
	router.Get("/:id", manage, handler.GetUser)
	router.Put("/:id", manage, handler.UpdateUser)
	router.Post("/:id/approve", handler.Approve)
	router.Post("/:id/reject", handler.Reject)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/password", handler.ChangePassword)
}

func setupSocietyRoutes(
	router fiber.Router,
	property *handlers.PropertyHandler,
	notices *handlers.NoticeHandler,
	maintenance *handlers.MaintenanceHandler,
) {
	// Buildings
	router.Get("/buildings", middleware.PrivateCacheHeaders(5*time.Minute), property.ListBuildings)
	router.Post("/buildings", middleware.AdminOnly(), property.CreateBuilding)
	router.Patch("/buildings/:id", middleware.AdminOnly(), property.UpdateBuilding)
	router.Get("/buildings/:id/units", middleware.PrivateCacheHeaders(5*time.Minute), property.Units)
	router.Get("/vacancy", middleware.Require(adminCommittee, domain.PermViewDashboard), property.Vacancy)

	// Notices
	router.Get("/notices", notices.List)
	router.Post("/notices", middleware.RequirePermission(domain.PermPostNotices), notices.Post)
	router.Patch("/notices/:id", middleware.RequirePermission(domain.PermPostNotices), notices.Update)

	// Maintenance ledger
	managers := middleware.Require(adminCommittee, domain.PermManageMaintenance)
	payers := middleware.Require(adminCommittee, domain.PermManageMaintenance, domain.PermPayMaintenance)

	m := router.Group("/maintenance")
	m.Get("/", maintenance.List)
	m.Get("/locks", managers, maintenance.ListLocks)
	m.Get("/summary", managers, maintenance.Summary)
	m.Get("/export", managers, maintenance.Export)
	m.Post("/generate", managers, maintenance.Generate)
	m.Post("/lock", middleware.Require(adminOnly), maintenance.Lock)
	m.Patch("/:id", managers, maintenance.UpdateStatus)
	m.Post("/:id/pay", payers, maintenance.Pay)
}

// setupExpenseRoutes lets any resident read the ledger; only admins write
func setupExpenseRoutes(router fiber.Router, handler *handlers.ExpenseHandler) {
	router.Get("/", handler.List)
	router.Get("/export", middleware.Require(adminCommittee, domain.PermViewExpenses), handler.Export)
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Patch("/:id", middleware.AdminOnly(), handler.Update)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
}

func setupFundRoutes(router fiber.Router, handler *handlers.FundHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Post("/", middleware.RequirePermission(domain.PermManageTreasury), handler.Create)
	router.Post("/:id/contributions", handler.Contribute)
}

func setupMeetingRoutes(router fiber.Router, handler *handlers.MeetingHandler) {
	router.Get("/", handler.List)
	router.Post("/", middleware.RequirePermission(domain.PermScheduleMeetings), handler.Schedule)
	router.Post("/:id/rsvp", handler.RSVP)
}

func setupBookingRoutes(router fiber.Router, handler *handlers.BookingHandler) {
	router.Get("/", handler.List)
	router.Post("/", middleware.RequirePermission(domain.PermBookAmenities), handler.Create)
	router.Post("/:id/confirm", middleware.AdminOrCommittee(), handler.Confirm)
	router.Post("/:id/reject", middleware.AdminOrCommittee(), handler.Reject)
}
