// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ik5/dawcore"
)

func newPlayCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "play <file>",
		Short: "Preview a file on the default output device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return c.play(ctx, cmd, args[0])
		},
	}
}

func (c *cli) play(ctx context.Context, cmd *cobra.Command, path string) error {
	if addr := c.cfg.Metrics.Address; addr != "" {
		srv := serveMetrics(addr, c)
		defer srv.Close()
	}

	eng, err := dawcore.New(c.cfg, dawcore.WithLogger(c.logger))
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	defer eng.Close()

	id, events := eng.Notifications().Subscribe(8)
	defer eng.Notifications().Unsubscribe(id)

	eng.PreviewPlay(path)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			eng.Stop()
			return nil
		case ev := <-events:
			return fmt.Errorf("%s", ev.Message)
		case <-ticker.C:
			if !eng.Preview().State().Started {
				fmt.Fprintln(cmd.OutOrStdout(), "finished", path)
				return nil
			}
		}
	}
}

func serveMetrics(addr string, c *cli) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error().Err(err).Str("address", addr).Msg("metrics server stopped")
		}
	}()

	c.logger.Info().Str("address", addr).Msg("serving metrics")

	return srv
}
