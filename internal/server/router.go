// Package server assembles the HTTP routes.
package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/handler"
	internalmiddleware "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/middleware"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/service"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/logger"
	corsmiddleware "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/middleware/cors"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Accounts      *handler.AccountHandler
	Academic      *handler.AcademicHandler
	Records       *handler.RecordsHandler
	Peers         *handler.PeerHandler
	Competency    *handler.CompetencyHandler
	Announcements *handler.AnnouncementHandler
	Attachments   *handler.AttachmentHandler
	System        *handler.SystemHandler
}

// Options carries the cross-cutting pieces of the router.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         internalmiddleware.TokenValidator
	Audit          internalmiddleware.AuditWriter
	// LoginLimiter is nil when login throttling is disabled.
	LoginLimiter *ratelimit.Limiter
}

const (
	admin   = string(models.RoleAdmin)
	teacher = string(models.RoleTeacher)
	student = string(models.RoleStudent)
)

// New builds the gin engine with every route mounted under opts.APIPrefix.
func New(h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(opts.Metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	r.GET("/metrics", h.System.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)

	auth := api.Group("/auth")
	if opts.LoginLimiter != nil {
		auth.POST("/login", opts.LoginLimiter.Middleware(), h.Auth.Login)
	} else {
		auth.POST("/login", h.Auth.Login)
	}
	auth.POST("/refresh", h.Auth.Refresh)
	// signed links are the credential for downloads
	api.GET("/attachments/:id/download", h.Attachments.Download)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(opts.Tokens))
	mountSecured(secured, h, opts)
	return r
}

func mountSecured(g *gin.RouterGroup, h Handlers, opts Options) {
	rbac := internalmiddleware.RBAC
	students := rbac(student, admin)
	staff := rbac(teacher, admin)
	admins := rbac(admin)

	g.POST("/auth/logout", h.Auth.Logout)
	g.POST("/auth/change-password", h.Auth.ChangePassword)
	g.GET("/auth/me", h.Auth.Me)
	g.GET("/system/metrics", admins, h.System.Summary)

	accounts := g.Group("/accounts", admins)
	accounts.GET("", h.Accounts.List)
	accounts.POST("", h.Accounts.Create)
	accounts.GET("/:id", h.Accounts.Get)
	accounts.PUT("/:id", h.Accounts.Update)
	accounts.DELETE("/:id", h.Accounts.Delete)

	academic := g.Group("/academic")
	academic.GET("/grades", h.Academic.ListGrades)
	academic.POST("/grades", students, h.Academic.AddGrade)
	academic.POST("/grades/bulk", students, h.Academic.BulkGrades)
	academic.DELETE("/grades/:id", students, h.Academic.DeleteGrade)
	academic.GET("/gpa", h.Academic.GetManualGPA)
	academic.PUT("/gpa", students, h.Academic.SetManualGPA)
	academic.GET("/requirements", h.Academic.ListRequirements)
	academic.PUT("/requirements", admins, h.Academic.SetRequirements)

	g.GET("/language/results", h.Records.ListLanguage)
	g.POST("/language/results", students, h.Records.CreateLanguage)
	g.GET("/language/latest", h.Records.LatestLanguage)

	g.GET("/trainings", h.Records.ListTrainings)
	g.POST("/trainings", students, h.Records.CreateTraining)
	g.DELETE("/trainings/:id", students, h.Records.DeleteTraining)

	g.GET("/activities", h.Records.ListActivities)
	g.POST("/activities", students, h.Records.CreateActivity)
	g.DELETE("/activities/:id", students, h.Records.DeleteActivity)

	g.POST("/peer-evaluations", rbac(student), h.Peers.Submit)
	g.GET("/peer-evaluations", h.Peers.Summary)

	competency := g.Group("/competency")
	competency.POST("/recalculate", staff, h.Competency.RecalculateCohort)
	competency.POST("/recalculate/:accountId", rbac(teacher, admin, internalmiddleware.Self), h.Competency.Recalculate)
	competency.GET("/overview", staff, h.Competency.Overview)
	competency.GET("/export", staff, internalmiddleware.Audit(opts.Audit, models.AuditActionExport, "competency"), h.Competency.Export)
	competency.GET("/:accountId", rbac(teacher, admin, internalmiddleware.Self), h.Competency.Summary)
	competency.GET("/:accountId/snapshot", rbac(teacher, admin, internalmiddleware.Self), h.Competency.Snapshot)

	g.GET("/announcements", h.Announcements.List)
	g.POST("/announcements", staff, h.Announcements.Create)
	g.DELETE("/announcements/:id", staff, h.Announcements.Delete)

	g.GET("/attachments", h.Attachments.List)
	g.POST("/attachments", students, h.Attachments.Upload)
	g.GET("/attachments/:id/url", h.Attachments.SignedURL)
	g.DELETE("/attachments/:id", students, h.Attachments.Delete)
}
