package application

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	router "github.com/shyjal/goplaces/internal/adapters/http"
	"github.com/shyjal/goplaces/internal/adapters/http/handler"
	"github.com/shyjal/goplaces/internal/adapters/http/middleware"
	"github.com/shyjal/goplaces/internal/domain"
	"github.com/shyjal/goplaces/internal/infrastructure/ai"
	config "github.com/shyjal/goplaces/internal/infrastructure/configs"
	"github.com/shyjal/goplaces/internal/infrastructure/repository/redis"
	"github.com/shyjal/goplaces/internal/infrastructure/storage"
	"github.com/shyjal/goplaces/internal/usecase"
	"github.com/shyjal/goplaces/pkg/logger"
)

type App struct {
	Cfg *config.Config
}

func (a App) Run() {

	log := logger.NewLogger(a.Cfg.LogFile, a.Cfg.LogLevel)

	var limiter domain.RequestLimiterRepository
	if a.Cfg.RedisAddr != "" {
		redisConn, err := redis.ConnectToRedis(a.Cfg.RedisAddr, a.Cfg.RedisDB)
		if err != nil {
			log.Error("redis connection failed", "reason", err.Error())
			panic(err)
		}
		defer redisConn.Close()
		limiter = middleware.NewRedisRateLimiter(redisConn, a.Cfg.RateLimitCapacity, a.Cfg.RateLimitFillRate, time.Hour)
	} else {
		limiter = middleware.NewIPRateLimiter(a.Cfg.RateLimitCapacity, a.Cfg.RateLimitFillRate)
	}

	// One shared client without a timeout: a generation is bounded by
	// the queue, not by us.
	httpClient := &http.Client{}

	mediaStore := storage.NewFalMediaClient(a.Cfg.FalStorageURL, a.Cfg.FalKey, httpClient)
	falClient := ai.NewFalClient(a.Cfg.FalQueueURL, a.Cfg.FalModel, a.Cfg.FalKey, httpClient, a.Cfg.PollInterval())

	imageSvc := usecase.NewGenerateImageService(mediaStore, falClient, log)

	h := handler.NewGenerationHandler(
		imageSvc,
		log,
		a.Cfg.MapboxToken,
		a.Cfg.PlacesAPIKey,
		a.Cfg.PlacesAPIURL,
		a.Cfg.APIBaseURL,
		a.Cfg.MaxUploadSize)

	routerCfg := router.RouterConfig{
		GenerationHandler: h,
		Limiter:           limiter,
		Logger:            log,
		WebDir:            a.Cfg.WebDir,
	}

	g := router.SetupRoutes(routerCfg)

	server := &http.Server{
		Addr:    a.Cfg.ServerAddr(),
		Handler: g,
	}

	go func() {
		log.Info("starting the server", "server.address", server.Addr)
		serverErr := server.ListenAndServe()
		if serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
			log.Error("failed to start the server", "reason", serverErr.Error())
		}
	}()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan

	log.Info("shutting down the server")

	shutdownctx, shutdowncancelFunc := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout())
	defer shutdowncancelFunc()
	if err := server.Shutdown(shutdownctx); err != nil {
		log.Error("server closed with error", "reason", err.Error())
	}

}
