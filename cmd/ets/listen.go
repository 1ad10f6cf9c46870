package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/shamank/ets-sdk-go/pkg/listener"
	"github.com/shamank/ets-sdk-go/pkg/sdk"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listenCmd = &cobra.Command{
	Use:   "listen TOPIC...",
	Short: "Print contract events as JSON lines until interrupted",
	Long: "Subscribes to the given topics and prints one JSON object per delivered record.\n\nTopics: " +
		strings.Join(listener.Topics(), ", "),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, t := range args {
			if !listener.IsTopic(t) {
				return fmt.Errorf("unknown topic %q", t)
			}
		}

		errs := make(chan error, 16)
		ets, err := openSDK(sdk.WithListenerErrors(errs))
		if err != nil {
			return err
		}
		defer ets.Close()

		ctx := cmd.Context()
		out := &lineWriter{enc: json.NewEncoder(cmd.OutOrStdout())}
		for _, t := range args {
			if err := ets.Listeners().ListenTopic(ctx, t, out.callback(t)); err != nil {
				return err
			}
		}
		return drain(ctx, errs)
	},
}

type lineWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

type line struct {
	Topic  string `json:"topic"`
	Record any    `json:"record"`
}

func (w *lineWriter) callback(topic string) listener.AnyCallback {
	return func(_ context.Context, rec any) error {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.enc.Encode(line{Topic: topic, Record: rec})
	}
}

// drain logs handler failures until ctx ends. A failed subscription ends
// the command since its registration is gone.
func drain(ctx context.Context, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			var he *listener.HandlerError
			if errors.As(err, &he) && he.Stage == listener.StageSubscription {
				return err
			}
			zap.L().Warn("listener handler failed", zap.Error(err))
		}
	}
}
