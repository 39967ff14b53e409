package subscription

import (
	offerRepo "vpn_billing/internal/domain/offer/repository"
	offerService "vpn_billing/internal/domain/offer/service"
	pricingModel "vpn_billing/internal/domain/pricing/model"
	pricingService "vpn_billing/internal/domain/pricing/service"
	serverRepo "vpn_billing/internal/domain/server/repository"
	"vpn_billing/internal/domain/subscription/handler"
	"vpn_billing/internal/domain/subscription/repository"
	"vpn_billing/internal/domain/subscription/service"
	userRepo "vpn_billing/internal/domain/user/repository"
	"vpn_billing/internal/pkg/middleware"
	"vpn_billing/internal/pkg/registry"
	"vpn_billing/pkg/database"

	"github.com/gin-gonic/gin"
)

type SubscriptionModule struct{}

func init() {
	registry.Register(&SubscriptionModule{})
}

func (m *SubscriptionModule) Name() string {
	return "subscription"
}

// Priority after user and offer so their tables migrate first.
func (m *SubscriptionModule) Priority() int {
	return 20
}

func (m *SubscriptionModule) Init(ctx *registry.ModuleContext) error {
	tables := pricingModel.TablesFromConfig(ctx.Cfg.Pricing)
	calc := pricingService.NewCalculator(tables, ctx.Logger)

	users := userRepo.NewUserRepository(ctx.DB)
	servers := serverRepo.NewServerRepository(ctx.DB)
	subs := repository.NewSubscriptionRepository(ctx.DB)
	locker := database.NewRedisLocker(ctx.Redis)
	offers := offerService.NewOfferService(offerRepo.NewOfferRepository(ctx.DB), locker, ctx.Logger)

	purchases := service.NewPurchaseService(calc, users, servers, subs, offers, locker, ctx.Logger)
	sHandler := handler.NewSubscriptionHandler(purchases, subs)

	setupRoutes(ctx.Router, sHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.SubscriptionHandler) {
	g := r.Group("/miniapp/subscription")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("/preview", h.Preview)
		g.POST("/purchase", h.Purchase)
		g.POST("/renew", h.Renew)
		g.POST("/add-server", h.AddServer)
		g.GET("/transactions", h.ListTransactions)
	}
}
