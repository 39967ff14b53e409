package registry

import (
	"vpn_billing/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext carries everything a module needs for initialization.
type ModuleContext struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine
	Logger *zap.Logger
	Cfg    *config.Config
}

// Module is a self-registering application module.
type Module interface {
	// Name returns the module name.
	Name() string

	// Init wires the module (dependency injection, route registration).
	Init(ctx *ModuleContext) error

	// Priority orders initialization; lower numbers run first.
	Priority() int
}

var moduleRegistry = make(map[string]Module)

// Register adds a module to the registry, typically from an init func.
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// GetModules returns every registered module.
func GetModules() map[string]Module {
	return moduleRegistry
}

// InitModules initializes all registered modules in priority order.
func InitModules(ctx *ModuleContext) error {
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}

	// Bubble sort is plenty for a handful of modules.
	for i := 0; i < len(modules); i++ {
		for j := i + 1; j < len(modules); j++ {
			if modules[i].Priority() > modules[j].Priority() {
				modules[i], modules[j] = modules[j], modules[i]
			}
		}
	}

	for _, module := range modules {
		if err := module.Init(ctx); err != nil {
			return err
		}
	}

	return nil
}
