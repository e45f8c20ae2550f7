package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// resolveCmd turns a channel page into its media URL
var resolveCmd = &cobra.Command{
	Use:   "resolve [CHANNEL_URL]",
	Short: "Resolve a channel page into a playable stream URL",
	Long: `Fetch the channel page, extract its post identifier and ask the site's AJAX endpoint for the stream.
The media URL is printed on success so it can be piped into any player.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newChannelService()
		if err != nil {
			return err
		}

		result := svc.Resolve(cmd.Context(), args[0])
		if !result.OK() {
			return result.Err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.MediaURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
