package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/checkprioritizer/internal/adapters/driven/auth"
	redisadapter "github.com/custodia-labs/checkprioritizer/internal/adapters/driven/redis"
	apihttp "github.com/custodia-labs/checkprioritizer/internal/adapters/driving/http"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

func newServeCmd(a *app) *cobra.Command {
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay (/ask, /api/v1/search, /status)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			r, err := a.newRetrieval(cmd.Context(), true)
			if err != nil {
				return err
			}

			var tokens driven.TokenVerifier
			if a.cfg.Server.JWTSecret != "" {
				tokens = auth.NewAdapter(a.cfg.Server.JWTSecret)
				log.Println("Bearer token auth enabled")
			}

			var redisPinger apihttp.Pinger
			if r.backend.redis != nil {
				redisPinger = redisadapter.NewLock(r.backend.redis, "")
			}

			cfg := apihttp.DefaultConfig()
			cfg.Port = a.cfg.Server.Port
			cfg.Version = version
			cfg.AllowedOrigins = origins
			cfg.SearchDefaults = a.cfg.SearchOptions()
			cfg.Metrics = a.metrics
			cfg.Gatherer = a.reg
			cfg.Logger = a.logger

			server := apihttp.NewServer(cfg, r.search, r.answer, r.services, tokens, r.backend.index, redisPinger)

			log.Printf("API server starting on :%d", cfg.Port)
			return server.Start(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 8000, "listen port")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", []string{"*"}, "allowed CORS origins")
	retrievalFlags(cmd)
	return cmd
}
