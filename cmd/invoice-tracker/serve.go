package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/invoice-tracker/internal/httpapi"
	"github.com/joseph-ayodele/invoice-tracker/internal/server"
)

func newServeCommand(e *env) *cobra.Command {
	var watch string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC and HTTP servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, closeDB, err := e.open(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := a.DB.HealthCheck(ctx, e.cfg.Database.PingTimeout, e.logger); err != nil {
				return err
			}

			errCh := make(chan error, 3)

			var grpcServer *grpc.Server
			if addr := e.cfg.Server.GRPCAddr; addr != "" {
				lis, err := net.Listen("tcp", addr)
				if err != nil {
					e.logger.Error("failed to listen on address", "addr", addr, "error", err)
					return err
				}
				srv, hs := server.NewGRPCServer(a, e.logger)
				grpcServer = srv
				defer hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
				e.logger.Info("grpc listening", "addr", addr)
				go func() {
					if err := srv.Serve(lis); err != nil {
						errCh <- err
					}
				}()
			}

			var httpServer *http.Server
			if addr := e.cfg.Server.HTTPAddr; addr != "" {
				gin.SetMode(gin.ReleaseMode)
				httpServer = &http.Server{
					Addr:              addr,
					Handler:           httpapi.NewRouter(a, e.logger),
					ReadHeaderTimeout: 10 * time.Second,
				}
				e.logger.Info("http listening", "addr", addr)
				go func() {
					if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- err
					}
				}()
			}

			var watchers sync.WaitGroup
			if watch != "" {
				watchers.Add(1)
				go func() {
					defer watchers.Done()
					if err := watchDir(ctx, a, e.cfg.Worker, watch, true); err != nil {
						errCh <- err
					}
				}()
			}

			var serveErr error
			select {
			case <-ctx.Done():
				e.logger.Info("shutting down")
			case serveErr = <-errCh:
				e.logger.Error("server failed", "error", serveErr)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if httpServer != nil {
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					e.logger.Warn("http shutdown", "error", err)
				}
			}
			if grpcServer != nil {
				grpcServer.GracefulStop()
			}
			stop()
			watchers.Wait()
			return serveErr
		},
	}

	cmd.Flags().StringVar(&watch, "watch", "", "also ingest new files appearing in this directory")
	return cmd
}
