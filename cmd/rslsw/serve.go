package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/goplus/rslsw/internal/logger"
	"github.com/goplus/rslsw/internal/server"
	"github.com/goplus/rslsw/rust"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	glspserver "github.com/tliron/glsp/server"
)

func newServeCmd(a *app) *cobra.Command {
	var tcp string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the language server protocol over stdio or TCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(tcp)
		},
	}
	cmd.Flags().StringVar(&tcp, "tcp", "", "listen on this TCP address instead of stdio")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func (a *app) serve(tcp string) error {
	srv, err := server.New(rust.NewProject(nil, rust.FeatAll), a.viper, nil)
	if err != nil {
		return err
	}

	if addr := a.opts.Metrics.Addr; addr != "" {
		metrics := &http.Server{
			Addr:              addr,
			Handler:           metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Infow("serving metrics", "addr", addr)
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorw("metrics server failed", "error", err)
			}
		}()
		defer metrics.Close()
	}

	lsp := glspserver.NewServer(srv.Handler(), server.Name, false)
	if tcp != "" {
		logger.Infow("serving LSP", "transport", "tcp", "addr", tcp)
		return lsp.RunTCP(tcp)
	}
	logger.Infow("serving LSP", "transport", "stdio", "version", server.Version)
	return lsp.RunStdio()
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
