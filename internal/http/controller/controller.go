package controller

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/apm-demo-service/internal/config"
)

// RouteLister reports the routes registered on an engine. *gin.Engine satisfies it.
type RouteLister interface {
	Routes() gin.RoutesInfo
}

// Controller handles the static and introspection endpoints.
type Controller struct {
	config *config.Config
	routes RouteLister
}

// New creates a new Controller with the given configuration and route source.
func New(config *config.Config, routes RouteLister) *Controller {
	return &Controller{
		config: config,
		routes: routes,
	}
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	App     string `json:"app"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Home handles GET /.
func (con *Controller) Home(c *gin.Context) {
	c.String(http.StatusOK, "Hello, World!")
}

// About handles GET /about.
func (con *Controller) About(c *gin.Context) {
	c.String(http.StatusOK, "This is the upgraded Azure + New Relic demo app.")
}

// Status reports liveness of the process only; the database is not consulted.
func (con *Controller) Status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		App:     con.config.App.Name,
		Status:  "ok",
		Message: "App is running and responding",
	})
}

// Routes lists every registered path once, sorted.
func (con *Controller) Routes(c *gin.Context) {
	var paths []string
	for _, route := range con.routes.Routes() {
		paths = append(paths, route.Path)
	}
	slices.Sort(paths)

	c.JSON(http.StatusOK, slices.Compact(paths))
}
