package sdk

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"
)

// Healthcheck probes the remote collaborators of the SDK.
type Healthcheck interface {
	// Chain checks that the RPC endpoint answers and serves the configured
	// chain. It returns the latest block number.
	Chain(ctx context.Context) (*big.Int, error)
	// Backend checks that the REST backend answers.
	Backend(ctx context.Context) error
}

type healthcheckClient struct {
	core *Core
}

// Health returns a Healthcheck bound to c.
func (c *Core) Health() Healthcheck {
	return &healthcheckClient{core: c}
}

func (hc *healthcheckClient) Chain(ctx context.Context) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, hc.core.Timeouts.ChainRead)
	defer cancel()

	id, err := hc.core.evm.NetworkID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain heartbeat failed: %w", err)
	}
	if want, ok := hc.core.Network.ChainIDBig(); ok && want.Cmp(id) != 0 {
		return nil, fmt.Errorf("chain heartbeat: endpoint serves chain %s, want %s", id, want)
	}
	block, err := hc.core.evm.GetCurrentBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain heartbeat failed: %w", err)
	}
	if hc.core.Debug {
		zap.L().Debug("chain heartbeat", zap.String("chainId", id.String()), zap.String("block", block.String()))
	}
	return block, nil
}

func (hc *healthcheckClient) Backend(ctx context.Context) error {
	if _, err := hc.core.backend.FetchCountries(ctx); err != nil {
		return fmt.Errorf("backend heartbeat failed: %w", err)
	}
	return nil
}
