package server

import (
	"vpn_billing/internal/domain/server/handler"
	"vpn_billing/internal/domain/server/repository"
	"vpn_billing/internal/pkg/middleware"
	"vpn_billing/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

type ServerModule struct{}

func init() {
	registry.Register(&ServerModule{})
}

func (m *ServerModule) Name() string {
	return "server"
}

func (m *ServerModule) Priority() int {
	return 5
}

func (m *ServerModule) Init(ctx *registry.ModuleContext) error {
	sRepo := repository.NewServerRepository(ctx.DB)
	sHandler := handler.NewServerHandler(sRepo)

	setupRoutes(ctx.Router, sHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ServerHandler) {
	g := r.Group("/miniapp/servers")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("", h.ListAvailable)

		admin := g.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("", h.CreateSquad)
			admin.PUT("/:uuid", h.UpdateSquad)
		}
	}
}
