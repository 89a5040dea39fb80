// Command zenithsync keeps a live, correctness-tracked view of Zenith
// trading and market data and offers tools for inspecting wire frames.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zenithsync",
	Short: "Zenith client: live account, order and watchlist synchronisation",
	Long: `zenithsync connects to a Zenith server over a websocket and keeps feeds,
accounts, orders, holdings, balances and watchlists in sync.

Commands:
  run     - connect and synchronise until interrupted
  decode  - parse Zenith frames read from stdin
  encode  - build a subscribe or unsubscribe frame
  prefs   - manage saved account group selections`,
	SilenceUsage: true,
}

var (
	configPath string
	envFile    string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file loaded before the config (missing file is ignored)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
