package offer

import (
	"context"
	"time"

	"vpn_billing/internal/domain/offer/handler"
	"vpn_billing/internal/domain/offer/repository"
	"vpn_billing/internal/domain/offer/service"
	"vpn_billing/internal/pkg/middleware"
	"vpn_billing/internal/pkg/registry"
	"vpn_billing/internal/pkg/worker"
	"vpn_billing/pkg/database"

	"github.com/gin-gonic/gin"
)

type OfferModule struct{}

func init() {
	registry.Register(&OfferModule{})
}

func (m *OfferModule) Name() string {
	return "offer"
}

func (m *OfferModule) Priority() int {
	return 10
}

func (m *OfferModule) Init(ctx *registry.ModuleContext) error {
	oRepo := repository.NewOfferRepository(ctx.DB)
	oService := service.NewOfferService(oRepo, database.NewRedisLocker(ctx.Redis), ctx.Logger)

	pool := worker.NewWorkerPool(oService, 4, 256, ctx.Logger)
	pool.Start()

	sweepInterval := time.Duration(ctx.Cfg.Offers.SweepIntervalMinutes) * time.Minute
	service.StartSweeper(context.Background(), oService, sweepInterval, ctx.Logger)

	oHandler := handler.NewOfferHandler(oService, pool)
	setupRoutes(ctx.Router, oHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OfferHandler) {
	g := r.Group("/miniapp/promo-offers")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("", h.ListOffers)
		g.POST("/:id/claim", h.ClaimOffer)
	}

	internal := r.Group("/internal/offer-triggers")
	internal.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		internal.POST("", h.IngestTrigger)
	}
}
