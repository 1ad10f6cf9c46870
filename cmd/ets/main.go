// Command ets inspects and follows the Event Ticketing System contracts.
package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/shamank/ets-sdk-go/pkg/config"
	"github.com/shamank/ets-sdk-go/pkg/sdk"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "ets",
	Short:         "Event Ticketing System command line client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (ETS_* environment variables override it)")

	rootCmd.AddCommand(selectorsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(listenCmd)
}

// openSDK loads the configuration and connects. Commands that talk to the
// chain call it; selectors works offline and never does.
func openSDK(opts ...sdk.Option) (*sdk.Core, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return sdk.NewSDK(cfg, opts...)
}

func parseID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 0)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid identifier %q", s)
	}
	return id, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
