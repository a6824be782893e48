package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/yeremiapane/restaurant-dashboard/config"
	"github.com/yeremiapane/restaurant-dashboard/database"
	"github.com/yeremiapane/restaurant-dashboard/kds"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/router"
	"github.com/yeremiapane/restaurant-dashboard/services"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	s, err := database.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := database.Migrate(ctx, s); err != nil {
		return err
	}

	publisher, err := orderEventPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	images, uploadDir, err := imageStorage(ctx, cfg)
	if err != nil {
		return err
	}

	repos := repositories.New(s)
	hub := kds.NewHub()
	r := router.SetupRouter(router.Dependencies{
		Repos:          repos,
		Lifecycle:      services.NewOrderLifecycle(repos.Orders, hub, publisher),
		Hub:            hub,
		QR:             services.NewMenuQRGenerator(cfg.PublicBaseURL),
		Images:         images,
		UploadDir:      uploadDir,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:      rate.Limit(cfg.RateLimitRPS),
		RateBurst:      cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(r, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s (store=%s)", cfg.Port, cfg.StoreDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	utils.InfoLogger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func imageStorage(ctx context.Context, cfg *config.Config) (services.ImageStorage, string, error) {
	if cfg.ImageStorage == "s3" {
		s3Storage, err := services.NewS3ImageStorage(ctx, cfg.S3Bucket, cfg.S3Region)
		return s3Storage, "", err
	}
	return services.NewLocalImageStorage(cfg.UploadDir, cfg.PublicBaseURL), cfg.UploadDir, nil
}

// orderEventPublisher publishes to every configured broker, or nowhere.
func orderEventPublisher(cfg *config.Config) (services.OrderEventPublisher, error) {
	var publishers services.MultiPublisher
	if cfg.KafkaEnabled() {
		publishers = append(publishers, services.NewKafkaPublisher(services.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)))
		utils.InfoLogger.Printf("Publishing order events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}
	if cfg.RabbitMQEnabled() {
		rabbit, err := services.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			publishers.Close()
			return nil, err
		}
		publishers = append(publishers, rabbit)
		utils.InfoLogger.Printf("Publishing order events to exchange %s", cfg.RabbitMQExchange)
	}
	switch len(publishers) {
	case 0:
		return services.NoopPublisher{}, nil
	case 1:
		return publishers[0], nil
	}
	return publishers, nil
}
