package webserver

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/luminahq/lumina/internal/capability"
	"github.com/luminahq/lumina/internal/database"
	"github.com/luminahq/lumina/internal/ingest"
	"github.com/luminahq/lumina/internal/storage"
	"github.com/luminahq/lumina/internal/view"
	middlewarepkg "github.com/luminahq/lumina/internal/webserver/middleware"
	"github.com/mdouchement/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// A Controller is an Inversion Of Control pattern used to init the server package.
type Controller struct {
	Version  string
	Logger   logger.Logger
	Database database.Client
	Storage  storage.Backend
	Issuer   *capability.Issuer
	Composer *view.Composer
	Ingest   *ingest.Coordinator
	//
	ServiceToken string
}

// EchoEngine instantiates the web server.
func EchoEngine(ctrl Controller) *echo.Echo {
	engine := echo.New()
	engine.Use(middleware.Gzip())
	engine.Use(middlewarepkg.Logger(ctrl.Logger))

	engine.HTTPErrorHandler = middlewarepkg.NewHTTPErrorHandler(ctrl.Logger)

	engine.Pre(middleware.Rewrite(map[string]string{
		"/": "/version",
	}))

	//
	//
	//

	router := engine.Group("")

	// Generic handlers
	//
	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})
	router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Coordinator API consumed by the UI layer
	//

	v1 := router.Group("/v1")
	auth := middlewarepkg.Authenticate(ctrl.ServiceToken)

	// Asset views
	//
	asset := asset{
		logger:   ctrl.Logger,
		composer: ctrl.Composer,
		issuer:   ctrl.Issuer,
	}
	v1.GET("/assets", asset.List, auth)
	v1.POST("/share", asset.Share, auth)

	// Upload lifecycle
	//
	upload := upload{
		logger:      ctrl.Logger,
		coordinator: ctrl.Ingest,
	}
	v1.POST("/uploads", upload.Request, auth)
	v1.POST("/uploads/complete", upload.Complete, auth)

	return engine
}

// PrintRoutes prints the Echo engine exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}
