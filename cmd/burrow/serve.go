package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/synchttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve this replica's sync protocol and metrics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openReplica()
		if err != nil {
			return err
		}
		defer r.Close()

		metrics.SetVersion(Version)
		metrics.RegisterComponent("store", true, "")
		metrics.RegisterComponent("replica", true, "replica_uid="+r.ReplicaUID())

		collector := metrics.NewCollector(r)
		collector.Start()
		defer collector.Stop()

		listenAddr := cfg.ListenAddr
		syncHandler := synchttp.NewHandler(r)
		syncServer := &http.Server{Addr: listenAddr, Handler: syncHandler}

		errCh := make(chan error, 2)
		go func() {
			log.WithReplica(r.ReplicaUID()).Info().Str("addr", listenAddr).Msg("sync server listening")
			if err := syncServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("sync server: %w", err)
			}
		}()

		var metricsServer *http.Server
		if cfg.MetricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			mux.HandleFunc("/healthz", metrics.HealthHandler())
			mux.HandleFunc("/readyz", metrics.ReadyHandler())
			mux.HandleFunc("/livez", metrics.LivenessHandler())
			metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
			go func() {
				log.WithReplica(r.ReplicaUID()).Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
				if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- fmt.Errorf("metrics server: %w", err)
				}
			}()
		}

		fmt.Printf("Replica %s serving sync on %s\n", r.ReplicaUID(), listenAddr)
		if metricsServer != nil {
			fmt.Printf("Metrics on %s\n", cfg.MetricsAddr)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
		case err := <-errCh:
			fmt.Fprintf(os.Stderr, "\n%v\n", err)
		}

		syncServer.Close()
		if metricsServer != nil {
			metricsServer.Close()
		}
		return nil
	},
}
