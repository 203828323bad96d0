package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/osbdet/osbdetweb/catalog"
	"github.com/osbdet/osbdetweb/environment"
	"github.com/osbdet/osbdetweb/shutdown"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type Server struct {
	config   *Config
	catalog  *catalog.Catalog
	env      environment.Environment
	control  *shutdown.Control
	checker  environment.ServiceChecker
	registry *prometheus.Registry
	logger   zerolog.Logger
}

func NewServer(config *Config, cat *catalog.Catalog, env environment.Environment, checker environment.ServiceChecker) *Server {
	registry := newMetricsRegistry()
	return &Server{
		config:   config,
		catalog:  cat,
		env:      env,
		control:  shutdown.NewControl(env, newLogger("shutdown"), registry),
		checker:  checker,
		registry: registry,
		logger:   newLogger("http"),
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(&s.logger))
	router.SetTrustedProxies(nil)
	html := template.Must(template.ParseFS(templateFS, "templates/*.html"))
	router.SetHTMLTemplate(html)

	staticSubtreeFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	router.StaticFS("/static", http.FS(staticSubtreeFS))
	if s.config.Images != "" {
		router.Static("/images", s.config.Images)
	}

	router.GET("/", EnvironmentStateMiddleware(s.env, &s.logger), s.homePage)
	router.GET("/modules/:id", s.modulePage)

	api := router.Group("/api")
	{
		api.GET("/modules", s.listModules)
		api.GET("/modules/:id", s.getModule)
		api.GET("/services/:id/status", s.serviceStatus)
		api.GET("/state", EnvironmentStateMiddleware(s.env, &s.logger), s.environmentState)
		api.POST("/poweroff", CredentialsMiddleware(s.config), s.powerOff)
		api.POST("/poweron", s.powerOn)
	}

	router.GET("/metrics", gin.WrapH(metricsHandler(s.registry)))
	router.NoRoute(s.notFoundPage)

	return router
}

func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var bot *DiscordBot
	if s.config.Discord != nil {
		var err error
		bot, err = NewDiscordBot(s.config.Discord, s.env, s.control)
		if err != nil {
			return err
		}
		err = bot.Start()
		if err != nil {
			return err
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", s.config.Listen).Msg("Serving module pages")
		serveErr <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-serveErr:
	case <-ctx.Done():
	}

	if bot != nil {
		bot.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
