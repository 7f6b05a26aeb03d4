package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/terraconstructs/postboard/internal/authstate"
	"github.com/terraconstructs/postboard/internal/client"
	"github.com/terraconstructs/postboard/internal/config"
	"github.com/terraconstructs/postboard/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local postboard gateway",
	Long: `Starts a local HTTP gateway in front of the postboard API. The gateway holds
one session: log in through POST /api/login, then use /api/posts. Post routes
answer 503 while the saved session is being checked and redirect to /login when
there is no session. Prometheus metrics are served on /metrics.

With --ephemeral the session lives only as long as the gateway process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gc := config.MustFromContext(cmd.Context())
		logger := gc.Logger

		provider := gc.ClientProvider
		if gc.Ephemeral {
			provider = client.NewProvider(client.Options{
				APIURL:    gc.APIURL,
				Timeout:   gc.Timeout,
				Ephemeral: true,
				UserAgent: "postctl/" + Version,
				Logger:    logger,
			})
		}

		mgr, err := provider.Manager()
		if err != nil {
			return err
		}
		sdkClient, err := provider.SDKClient()
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := web.NewMetrics(reg)

		cancelSub := mgr.Subscribe(func(st authstate.State) {
			logger.Info("session state changed", "state", st.String())
			metrics.RecordTransition(st)
		})
		defer cancelSub()

		limiter := web.NewRateLimiter(web.DefaultRateLimitConfig(), logger)
		defer limiter.Stop()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go mgr.Start(ctx)

		corsCfg := web.DefaultCORSOptions(gc.AllowedOrigins)
		router := web.NewRouter(web.RouterOptions{
			Sessions:    mgr,
			Posts:       sdkClient,
			Logger:      logger,
			CORSOptions: &corsCfg,
			Metrics:     metrics,
			RateLimiter: limiter,
		})

		srv := &http.Server{
			Addr:         gc.ListenAddr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: gc.Timeout + 15*time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting gateway", "addr", gc.ListenAddr, "api_url", gc.APIURL, "ephemeral", gc.Ephemeral)
			serverErrors <- srv.ListenAndServe()
		}()
		pterm.Info.Printf("Gateway listening on http://%s\n", gc.ListenAddr)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			logger.Info("shutting down gateway")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			logger.Info("gateway stopped")
			return nil
		}
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String("listen", "", "Address to listen on (env: POSTBOARD_LISTEN_ADDR)")
	flags.StringSlice("allowed-origin", nil, "Browser origin allowed by CORS; repeatable (env: POSTBOARD_ALLOWED_ORIGINS)")
	flags.Bool("ephemeral", false, "Keep the session in memory only (env: POSTBOARD_EPHEMERAL)")

	bindFlags(flags, map[string]string{
		"listen_addr":     "listen",
		"allowed_origins": "allowed-origin",
		"ephemeral":       "ephemeral",
	})
}
