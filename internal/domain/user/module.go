package user

import (
	"vpn_billing/internal/domain/user/handler"
	"vpn_billing/internal/domain/user/repository"
	"vpn_billing/internal/domain/user/service"
	"vpn_billing/internal/pkg/middleware"
	"vpn_billing/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

type UserModule struct{}

func init() {
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	uRepo := repository.NewUserRepository(ctx.DB)
	gRepo := repository.NewPromoGroupRepository(ctx.DB)
	uService := service.NewUserService(uRepo, gRepo, ctx.Logger)
	uHandler := handler.NewUserHandler(uService)

	setupRoutes(ctx.Router, uHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	g := r.Group("/miniapp")

	g.POST("/auth", h.Auth)

	authorized := g.Group("")
	authorized.Use(middleware.AuthMiddleware())
	{
		authorized.GET("/profile", h.Profile)

		admin := authorized.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/users/promo-group", h.AssignGroup)
		}
	}
}
