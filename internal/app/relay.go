package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cineroom/cineroom/internal/relay/controller"
	"github.com/cineroom/cineroom/internal/relay/repository/connection/inmemory"
	"github.com/cineroom/cineroom/internal/relay/repository/redis"
	"github.com/cineroom/cineroom/internal/relay/service"
	"github.com/cineroom/cineroom/pkg/ctxlogger"
	"github.com/cineroom/cineroom/pkg/redisclient"
)

type RelayConfig struct {
	Secret        string `json:"-"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	MembersLimit  int    `json:"members_limit"`
	LogLevel      string `json:"log_level"`
	LibraryPath   string `json:"library_path"`
	RedisPort     int    `json:"redis_port"`
	RedisHost     string `json:"redis_host"`
	RedisPassword string `json:"-"`
}

func (cfg *RelayConfig) Validate() error {
	if cfg.Secret == "" {
		return fmt.Errorf("secret must be set")
	}
	if cfg.MembersLimit < 1 {
		return fmt.Errorf("members limit must be greater than 0")
	}
	return nil
}

// loadLibrary reads the movie id to manifest url map served by the
// stream-to-client endpoint. A missing path yields an empty library.
func loadLibrary(path string) (map[int]string, error) {
	if path == "" {
		return map[int]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library file: %w", err)
	}

	var library map[int]string
	if err := json.Unmarshal(data, &library); err != nil {
		return nil, fmt.Errorf("failed to parse library file: %w", err)
	}

	return library, nil
}

func RunRelay(ctx context.Context, cfg *RelayConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	library, err := loadLibrary(cfg.LibraryPath)
	if err != nil {
		return err
	}

	roomRepo := redis.NewRepo(rc, 24*time.Hour)
	connectionRepo := inmemory.NewRepo()
	roomService := service.NewService(roomRepo, connectionRepo, &service.Config{
		MembersLimit: cfg.MembersLimit,
		Secret:       cfg.Secret,
	})
	controller := controller.NewController(roomService, logger, library)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting relay", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
