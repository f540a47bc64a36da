package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/silab/attendance-system/docs"
	"github.com/silab/attendance-system/internal/api/handler"
	"github.com/silab/attendance-system/internal/api/middleware"
	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
	"github.com/silab/attendance-system/internal/infrastructure/http/handlers"
	"github.com/silab/attendance-system/pkg/logger"
)

// Dependencies carries the wired services the router exposes. Construction
// happens in main so the broadcast dispatcher can share the same instances.
type Dependencies struct {
	Mongo *mongo.Database
	Redis *redis.Client

	Scan         ports.ScanService
	Mode         ports.ModeService
	Registration ports.RegistrationService
	Attendance   ports.AttendanceRepository
	Dashboard    ports.DashboardService
	Schedule     ports.ScheduleService
	Auth         ports.AuthService

	JWTSecret string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("attendance"))

	// --- Handlers ---
	scanHandler := handler.NewScanHandler(deps.Scan)
	modeHandler := handler.NewModeHandler(deps.Mode)
	registrationHandler := handler.NewRegistrationHandler(deps.Registration)
	attendanceHandler := handler.NewAttendanceHandler(deps.Attendance)
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard)
	scheduleHandler := handler.NewScheduleHandler(deps.Schedule)
	authHandler := handler.NewAuthHandler(deps.Auth)

	admin := []echo.MiddlewareFunc{
		middleware.Auth(deps.JWTSecret),
		middleware.RBAC(domain.RoleAdmin),
	}

	// --- Auth ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Scanner-facing routes (devices carry no credentials) ---
	v1 := e.Group("/v1")
	v1.POST("/scan", scanHandler.Scan)
	v1.POST("/scan/status", scanHandler.Status)
	v1.GET("/mode", modeHandler.Get)
	v1.POST("/mode", modeHandler.Set, admin...)

	// --- Card registration ---
	v1.POST("/rfid/scan-register", registrationHandler.Probe)
	v1.POST("/rfid/register", registrationHandler.Bind, admin...)
	v1.GET("/rfid/last-scan", registrationHandler.LastScan, admin...)
	v1.GET("/rfid/users", registrationHandler.Users, admin...)

	// --- Ledger reads ---
	v1.GET("/attendance/today", attendanceHandler.Today)
	v1.GET("/attendance", attendanceHandler.List, admin...)

	// --- Dashboard ---
	v1.GET("/dashboard", dashboardHandler.Snapshot)
	v1.GET("/dashboard/day/:date", dashboardHandler.DayDetail)

	// --- Duty roster ---
	v1.GET("/schedule", scheduleHandler.List)
	v1.POST("/schedule/batch", scheduleHandler.Batch, admin...)
	v1.POST("/schedule/swap", scheduleHandler.Swap, admin...)
	v1.POST("/schedule/generate", scheduleHandler.Generate, admin...)
	v1.POST("/schedule/reset", scheduleHandler.Reset, admin...)

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	return e
}
