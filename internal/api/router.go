package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/api/handlers"
	"github.com/nebari-dev/attributes/internal/api/middleware"
	"github.com/nebari-dev/attributes/internal/auth"
	"github.com/nebari-dev/attributes/internal/config"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/entityform"
	"github.com/nebari-dev/attributes/internal/permissions"
	"github.com/nebari-dev/attributes/internal/routes"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	DB            *gorm.DB
	Forms         entityform.Deps
	Authenticator auth.Authenticator
	Permissions   *permissions.Generator
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	// Set Gin mode
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())

	authenticator := deps.Authenticator
	checker := deps.Forms.Access

	// Public API routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", handlers.HealthCheck)
		public.GET("/version", handlers.GetVersion)
		public.POST("/auth/login", handlers.Login(authenticator, deps.DB))
	}

	// Everything else runs as the token's account or as anonymous.
	site := router.Group("")
	site.Use(authenticator.OptionalMiddleware(), middleware.Recipient())

	messageHandler := handlers.NewMessageHandler(deps.Forms.Messenger)
	site.GET("/api/v1/messages", messageHandler.Drain)

	protected := router.Group("/api/v1")
	protected.Use(authenticator.Middleware())
	protected.GET("/auth/me", handlers.GetCurrentUser(authenticator))

	// Attributes. Entity level access is checked by the handlers.
	attrHandler := handlers.NewAttributeHandler(deps.Forms)
	site.GET(routes.GinPath(routes.AttributeAddPage), attrHandler.AddPage)
	site.GET(routes.GinPath(routes.AttributeAddForm), attrHandler.AddForm)
	site.POST(routes.GinPath(routes.AttributeAddForm), attrHandler.AddForm)
	site.GET(routes.GinPath(routes.AttributeCanonical), attrHandler.GetAttribute)
	site.GET(routes.GinPath(routes.AttributeEditForm), attrHandler.EditForm)
	site.POST(routes.GinPath(routes.AttributeEditForm), attrHandler.EditForm)
	site.GET(routes.GinPath(routes.AttributeTranslationAdd), attrHandler.TranslationAddForm)
	site.POST(routes.GinPath(routes.AttributeTranslationAdd), attrHandler.TranslationAddForm)
	site.GET(routes.GinPath(routes.AttributeDeleteForm), attrHandler.DeleteForm)
	site.POST(routes.GinPath(routes.AttributeDeleteForm), attrHandler.DeleteForm)
	site.GET(routes.GinPath(routes.AttributeView),
		middleware.RequirePermission(checker, entity.PermissionAccessContent), attrHandler.ListPublished)
	site.GET(routes.GinPath(routes.AttributeCollection),
		middleware.RequirePermission(checker, entity.PermissionAdministerAttributes), attrHandler.ListAttributes)

	// Attribute types
	typeHandler := handlers.NewAttributeTypeHandler(deps.Forms)
	types := site.Group("")
	types.Use(middleware.RequireAttributeTypeAdmin(checker))
	{
		types.GET(routes.GinPath(routes.AttributeTypeCollection), typeHandler.ListAttributeTypes)
		types.GET(routes.GinPath(routes.AttributeTypeAddForm), typeHandler.AddForm)
		types.POST(routes.GinPath(routes.AttributeTypeAddForm), typeHandler.AddForm)
		types.GET(routes.GinPath(routes.AttributeTypeCanonical), typeHandler.GetAttributeType)
		types.GET(routes.GinPath(routes.AttributeTypeEditForm), typeHandler.EditForm)
		types.POST(routes.GinPath(routes.AttributeTypeEditForm), typeHandler.EditForm)
		types.GET(routes.GinPath(routes.AttributeTypeDeleteForm), typeHandler.DeleteForm)
		types.POST(routes.GinPath(routes.AttributeTypeDeleteForm), typeHandler.DeleteForm)
	}

	// People and permissions
	adminHandler := handlers.NewAdminHandler(deps.DB, deps.Permissions)
	admin := site.Group("/admin")
	admin.Use(middleware.RequireAdmin(checker))
	{
		admin.GET("/people", adminHandler.ListUsers)
		admin.GET("/people/roles", adminHandler.ListRoles)
		admin.GET("/people/permissions", adminHandler.ListPermissions)
		admin.POST("/people/roles/:role/permissions", adminHandler.GrantPermission)
		admin.DELETE("/people/roles/:role/permissions", adminHandler.RevokePermission)
		admin.GET("/reports/audit", adminHandler.ListAuditLogs)
	}

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	slog.Info("API router initialized", "mode", cfg.Server.Mode)
	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		slog.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"ip", c.ClientIP(),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
