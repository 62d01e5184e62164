package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	app "gallery/src/app"
	"gallery/src/auth"
	cfg "gallery/src/configuration"
	"gallery/src/logging"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// NewClaimSource picks where claims come from: the API Gateway authorizer, or
// a bearer ID token checked against the issuer.
func NewClaimSource(ctx context.Context, config *cfg.Properties) (auth.ClaimSource, error) {
	switch config.Auth.Mode {
	case cfg.AuthModeOIDC:
		return auth.NewBearerSource(ctx, config.Auth.Issuer, config.Auth.ClientID)
	case cfg.AuthModeGateway:
		return auth.GatewaySource{}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", config.Auth.Mode)
	}
}

func ClaimShape(config *cfg.Properties) auth.ClaimShape {
	return auth.ClaimShape{
		SubjectKey: config.Auth.SubjectClaim,
		EmailKey:   config.Auth.EmailClaim,
		GroupsKey:  config.Auth.GroupsClaim,
	}
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Amz-Date", "X-Api-Key", "X-Amz-Security-Token"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = origins
	return config
}

func newEngine(config *cfg.Properties, log *logrus.Entry, source auth.ClaimSource) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		logging.RequestLogger(log),
		cors.New(corsConfig(config.Server.CorsOrigins)),
		ErrorResponder(log),
		auth.Attach(source, ClaimShape(config)),
	)
	if config.Server.Pprof {
		pprof.Register(router)
	}
	router.NoRoute(func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"error": "Not found"}) })
	return router
}

func NewImageRouter(config *cfg.Properties, log *logrus.Entry, source auth.ClaimSource, images *app.ImageService) *gin.Engine {
	router := newEngine(config, log, source)
	handler := NewImageHandler(images)

	router.GET("/health", handler.GetHealth)
	v1 := router.Group("/v1", auth.RequireAuth())
	{
		v1.POST("/submit", handler.Submit)
		v1.GET("/gallery", handler.Gallery)
	}
	return router
}

func NewUserRouter(config *cfg.Properties, log *logrus.Entry, source auth.ClaimSource) *gin.Engine {
	router := newEngine(config, log, source)
	handler := NewUserHandler()

	router.GET("/health", handler.GetHealth)
	v1 := router.Group("/v1")
	{
		v1.GET("/config", handler.Config)
		v1.GET("/profile", auth.RequireAuth(), handler.Profile)

		admin := v1.Group("/admin", auth.RequireAuth(), auth.RequireGroup(config.Auth.AdminGroup))
		admin.GET("/ping", handler.AdminPing)
	}
	return router
}

// Run serves router through the Lambda proxy adapter when running inside
// Lambda, otherwise as a plain HTTP server until ctx is cancelled.
func Run(ctx context.Context, config *cfg.Properties, router *gin.Engine, log *logrus.Entry) error {
	if cfg.InLambda() {
		log.Info("starting lambda runtime")
		lambda.Start(ginadapter.New(router).ProxyWithContext)
		return nil
	}

	srv := &http.Server{
		Addr:         ":" + config.Server.Port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}
	errs := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
