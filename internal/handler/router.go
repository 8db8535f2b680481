package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/magicauth/internal/middleware"
)

type RouterDeps struct {
	Auth           *AuthHandler
	Sessions       middleware.SessionChecker
	LoginRateLimit time.Duration
	DevMode        bool
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/login", middleware.RateLimit(deps.LoginRateLimit), deps.Auth.Login)
	api.GET("/auth/verify", deps.Auth.Verify)
	// logout stays outside the session group so the cookie is cleared even
	// when the session store cannot be read
	api.POST("/auth/logout", deps.Auth.Logout)

	authGroup := api.Group("")
	authGroup.Use(middleware.SessionAuth(deps.Sessions, !deps.DevMode))
	authGroup.GET("/auth/me", deps.Auth.Me)
}
