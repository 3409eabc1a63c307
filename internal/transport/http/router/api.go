package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-auth-api/internal/core/auth"
	"go-auth-api/internal/core/cache"
	"go-auth-api/internal/core/config"
	"go-auth-api/internal/domain"
	"go-auth-api/internal/service"
	"go-auth-api/internal/transport/http/handler"
	mdw "go-auth-api/internal/transport/http/middleware"
	resp "go-auth-api/internal/transport/http/response"
)

type Deps struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Cache *cache.Cache
	JWTer *auth.JWTer
	Auth  *service.AuthService
	Users *service.UserService
	TwoFA *service.TwoFactorService
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.CustomRecoveryWithZap(d.Log, true, func(c *gin.Context, err any) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, ""))
		}),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		cors.Default(),
	)

	app := &handler.AppHandler{
		Name:    d.Cfg.App.Name,
		Version: d.Cfg.App.Version,
		Env:     d.Cfg.App.Env,
		DB:      d.DB,
		Cache:   d.Cache,
	}
	authH := &handler.AuthHandler{
		Auth:       d.Auth,
		Users:      d.Users,
		TwoFactor:  d.TwoFA,
		RefreshTTL: time.Duration(d.Cfg.JWT.RefreshTokenTTLDay) * 24 * time.Hour,
		CookieDom:  d.Cfg.Cookie.Domain,
		CookieSec:  d.Cfg.Cookie.Secure,
	}
	userH := &handler.UserHandler{Users: d.Users}

	// ops endpoints outside the API prefix
	r.GET("/health", app.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.GET("/info", app.Info)
	api.GET("/health", app.Health)
	api.GET("/hello", app.Hello)

	authGrp := api.Group("/auth")
	authGrp.POST("/register", authH.Register)
	authGrp.POST("/login", mdw.RateLimitPerIP(1, 5), authH.Login)
	authGrp.POST("/refresh", authH.Refresh)
	authGrp.POST("/logout", authH.Logout)

	twofa := authGrp.Group("/2fa", mdw.AuthJWT(d.JWTer))
	twofa.POST("/setup", authH.TwoFactorSetup)
	twofa.POST("/enable", authH.TwoFactorEnable)
	twofa.POST("/disable", authH.TwoFactorDisable)

	users := api.Group("/users", mdw.AuthJWT(d.JWTer))
	users.GET("/me", userH.Me)
	users.PATCH("/me", userH.UpdateMe)
	users.DELETE("/me", userH.DeleteMe)

	// managers get read access, everything else stays admin-only
	reads := users.Group("", mdw.RequireRole(domain.RoleAdmin, domain.RoleManager))
	reads.GET("", userH.List)
	reads.GET("/:id", userH.GetByID)

	admin := users.Group("", mdw.RequireRole(domain.RoleAdmin))
	admin.GET("/by-email", userH.GetByEmail)
	admin.PATCH("/:id", userH.AdminUpdate)
	admin.DELETE("/:id", userH.SoftDelete)
	admin.DELETE("/:id/hard", userH.HardDelete)
	admin.PATCH("/:id/ban", userH.Ban)
	admin.PATCH("/:id/role", userH.AssignRole)

	return r
}
