package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/opsdesk/sdrctl/internal/config"
	"github.com/opsdesk/sdrctl/internal/logging"
	"github.com/opsdesk/sdrctl/internal/server"
)

// serveCmd runs the HTTP front door over the engine.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the SDR HTTP API",
	Long: `Run the HTTP front door.

Callers authenticate with a bearer JWT whose subject, name, and email
claims identify the submitter. Validation failures return 400 with the
full field list; unknown ids return 404.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cfg, err := newService()
		if err != nil {
			return err
		}
		if err := config.ValidateServerConfig(cfg); err != nil {
			return fmt.Errorf("server configuration incomplete: %w", err)
		}

		srv := server.New(service, cfg.Server.JWTSecret)
		httpSrv := &http.Server{
			Addr:     cfg.Server.Addr,
			Handler:  srv.Router(),
			ErrorLog: slog.NewLogLogger(logging.GetLogger().Handler(), slog.LevelError),
		}

		logging.Info("starting sdr api", "addr", cfg.Server.Addr)
		return httpSrv.ListenAndServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
