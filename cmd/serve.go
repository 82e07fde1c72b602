package cmd

import (
	"fmt"

	"github.com/simonvc/leaveledger/internal/config"
	"github.com/simonvc/leaveledger/internal/logging"
	"github.com/simonvc/leaveledger/internal/server"
	"github.com/simonvc/leaveledger/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveAddr     string
	serveLogLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = serveLogLevel
		}

		log, err := logging.New(cfg.Logging())
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer log.Sync()

		st, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(st, cfg.Server.Addr, log)
		return srv.ListenAndServe()
	},
}

func openStore(cfg config.FileConfig, log *zap.Logger) (*store.Store, error) {
	weekend, err := cfg.Weekend()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Database.Path, store.WithWeekend(weekend), store.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Info("database ready", zap.String("path", cfg.Database.Path))
	return st, nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8888", "Listen address")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd)
}
