package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PizzaHomicide/rotv/internal/ui/tui/models"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var channelsJSON bool

// channelsCmd prints the channel directory
var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the channels currently on the directory",
	Long:  `Scrape the rds.live homepage and print every channel with its page URL.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newChannelService()
		if err != nil {
			return err
		}

		channels := svc.Channels(cmd.Context())
		out := cmd.OutOrStdout()

		if channelsJSON {
			result, err := json.MarshalIndent(channels, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format result: %w", err)
			}
			_, _ = fmt.Fprintln(out, string(result))
			return nil
		}

		if len(channels) == 0 {
			return errors.New(models.EmptyDirectoryMessage)
		}

		width := 0
		for _, ch := range channels {
			width = max(width, runewidth.StringWidth(ch.Name))
		}
		for _, ch := range channels {
			_, _ = fmt.Fprintf(out, "%s  %s\n", runewidth.FillRight(ch.Name, width), ch.URL)
		}
		return nil
	},
}

func init() {
	channelsCmd.Flags().BoolVar(&channelsJSON, "json", false, "print the directory as JSON")
	rootCmd.AddCommand(channelsCmd)
}
