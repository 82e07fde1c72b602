package cmd

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/simonvc/leaveledger/internal/client"
	"github.com/simonvc/leaveledger/internal/server"
	"github.com/simonvc/leaveledger/internal/tui"
	"go.uber.org/zap"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTenant == "" || flagUser == "" {
			return fmt.Errorf("--tenant and --user are required")
		}
		serverAddr := flagServer

		if !cmd.Flags().Changed("server") {
			// Start embedded server in background
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// Logging would draw over the alt screen.
			st, err := openStore(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			defer st.Close()

			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			srv := server.New(st, ln.Addr().String(), nil)
			go srv.Serve(ln)
			serverAddr = "http://" + ln.Addr().String()

			// Wait for server to be ready
			c := client.New(serverAddr)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for {
				if err := c.Ping(ctx); err == nil {
					break
				}
				if ctx.Err() != nil {
					return fmt.Errorf("timeout waiting for embedded server")
				}
				time.Sleep(50 * time.Millisecond)
			}
		}

		c := client.New(serverAddr).WithTenant(flagTenant).WithUser(flagUser)
		app := tui.NewApp(c, flagUser)
		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
