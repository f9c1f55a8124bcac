package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/apm-demo-service/internal/config"
	"github.com/iyhunko/apm-demo-service/internal/http/controller"
	"github.com/iyhunko/apm-demo-service/internal/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Controllers groups the handlers mounted by InitRouter.
type Controllers struct {
	General *controller.Controller
	Product *controller.ProductController
	Load    *controller.LoadController
	Health  *controller.HealthController
}

func InitRouter(conf *config.Config, server *gin.Engine, ctrs Controllers) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery())
	server.Use(otelgin.Middleware(conf.Tracing.ServiceName))
	server.Use(middleware.Logger(), middleware.CORS(), middleware.Metrics())

	server.GET("/", ctrs.General.Home)
	server.GET("/about", ctrs.General.About)
	server.GET("/status", ctrs.General.Status)
	server.GET("/routes", ctrs.General.Routes)

	products := server.Group("/products")
	{
		products.GET("", ctrs.Product.ListProducts)
		products.GET("/slow", ctrs.Product.ListProductsSlow)
	}

	server.GET("/cpu-heavy", ctrs.Load.CPUHeavy)
	server.GET("/file-large", ctrs.Load.FileLarge)
	server.GET("/db-health", ctrs.Health.DBHealth)

	server.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return server
}
