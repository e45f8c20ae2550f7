package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/PizzaHomicide/rotv/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd runs the browser UI
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the channel grid and player to browsers",
	Long: `Start the web UI.  Each browser gets its own session holding the current view and selected channel.
The JSON API lives under /api and Prometheus metrics under /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		svc, err := newChannelService()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gin.SetMode(gin.ReleaseMode)
		return web.NewServer(cfg, svc).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.addr from the config")
	rootCmd.AddCommand(serveCmd)
}
