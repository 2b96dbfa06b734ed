package app

import (
	"net/http"
	"strings"

	"github.com/Jairo-Bargas/Api-project/internal/auth"
	"github.com/Jairo-Bargas/Api-project/internal/cache"
	"github.com/Jairo-Bargas/Api-project/internal/config"
	"github.com/Jairo-Bargas/Api-project/internal/handlers"
	"github.com/Jairo-Bargas/Api-project/internal/query"
	"github.com/Jairo-Bargas/Api-project/internal/repo"
	"github.com/Jairo-Bargas/Api-project/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.HandleMethodNotAllowed = true
	r.NoRoute(handlers.NoRoute)
	r.NoMethod(handlers.NoMethod)

	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL.Duration())
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(tokens, userSvc)

	api := r.Group("", RequireJSONBody())
	api.POST("/registro", authHandler.Register)
	api.POST("/login", authHandler.Login)

	protected := api.Group("", auth.RequireToken(tokens))
	protected.DELETE("/cuenta", authHandler.DeleteAccount)

	tareaRepo := repo.NewPGTareaRepo(db)
	tareaCache := cache.NewTareaCache(rdb, cfg.Redis.DefaultTTL.Duration())
	tareaSvc := service.NewTareaService(tareaRepo, tareaCache)
	limits := query.Limits{DefaultLimit: cfg.Page.DefaultLimit, MaxLimit: cfg.Page.MaxLimit}
	tareaHandler := handlers.NewTareaHandler(tareaSvc, limits)
	registerTareaRoutes(protected, tareaHandler)
}

// RequireJSONBody rejects mutating requests that do not declare a JSON
// content type, before any handler logic runs.
func RequireJSONBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}
		ct := c.ContentType()
		if !strings.EqualFold(ct, "application/json") {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "validacion",
				"mensaje": "Content-Type debe ser application/json",
			})
			return
		}
		c.Next()
	}
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Tareas API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTareaRoutes(api *gin.RouterGroup, h *handlers.TareaHandler) {
	api.POST("/tareas", h.Create)
	api.GET("/tareas", h.List)
	api.GET("/tareas/:id", h.GetByID)
	api.PUT("/tareas/:id", h.Update)
	api.DELETE("/tareas/:id", h.Delete)
}
