package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/docshare/internal/middleware"
)

type RouterDeps struct {
	Shares    *ShareHandler
	Shared    *SharedHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/shares", deps.Shares.Create)
	authGroup.GET("/shares", deps.Shares.List)
	authGroup.GET("/shares/:token", deps.Shares.Get)
	authGroup.DELETE("/shares/:token", deps.Shares.Revoke)
	authGroup.GET("/shares/:token/accesses", deps.Shares.Accesses)

	api.GET("/shared/:token", deps.Shared.Resolve)
	api.GET("/shared/:token/download", deps.Shared.Download)
}
