// Command sandbox runs the in-memory reference implementation of the
// enrollment API. It serves the same wire contract the client stack talks
// to, so the whole pipeline can be exercised without the production backend.
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tandikan/enroll/internal/sandbox"
	"github.com/tandikan/enroll/pkg/config"
	"github.com/tandikan/enroll/pkg/logger"
	"github.com/tandikan/enroll/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	store := sandbox.NewStore()
	if cfg.Sandbox.SeedDemo {
		if err := sandbox.SeedDemo(store); err != nil {
			logr.Sugar().Fatalw("failed to seed demo data", "error", err)
		}
		logr.Info("demo catalog and accounts seeded")
	}

	metrics := telemetry.New()
	srv := sandbox.NewServer(store, cfg.Sandbox, nil, logr).WithMetrics(metrics)
	r := srv.Router()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	addr := fmt.Sprintf(":%d", cfg.Sandbox.Port)
	logr.Sugar().Infow("sandbox starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("sandbox failed", "error", err)
	}
}
