package blockchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Backend is the part of *ethclient.Client the SDK depends on.
type Backend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// EVMClient holds a chain connection and the facets of the events and tickets
// diamonds. The ticket controller shares the events diamond address.
type EVMClient struct {
	Client     Backend
	ChainID    *big.Int
	Events     *EventFacet
	Controller *TicketControllerFacet
	Tickets    *TicketFacet
	Diamond    *DiamondFacet
}

// NewEVMClient binds the facets over an existing backend.
func NewEVMClient(backend Backend, chainID *big.Int, eventsAddr, ticketsAddr common.Address) *EVMClient {
	return &EVMClient{
		Client:     backend,
		ChainID:    chainID,
		Events:     NewEventFacet(eventsAddr, backend),
		Controller: NewTicketControllerFacet(eventsAddr, backend),
		Tickets:    NewTicketFacet(ticketsAddr, backend),
		Diamond:    NewDiamondFacet(eventsAddr, backend),
	}
}

// InitEvm dials endpoint, reads the chain id and binds the facets.
// Log subscriptions require a websocket endpoint.
func InitEvm(ctx context.Context, endpoint string, eventsAddr, ticketsAddr common.Address) (*EVMClient, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		zap.L().Error("Failed to get chain id", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("chain id from %s: %w", endpoint, err)
	}

	zap.L().Debug("Connected to chain",
		zap.String("endpoint", endpoint),
		zap.String("chainId", chainID.String()),
		zap.String("events", eventsAddr.Hex()),
		zap.String("tickets", ticketsAddr.Hex()))

	return NewEVMClient(client, chainID, eventsAddr, ticketsAddr), nil
}

// NetworkID asks the provider which chain it serves.
func (evm *EVMClient) NetworkID(ctx context.Context) (*big.Int, error) {
	return evm.Client.ChainID(ctx)
}

// GetCurrentBlockNumber returns the latest block number.
func (evm *EVMClient) GetCurrentBlockNumber(ctx context.Context) (*big.Int, error) {
	header, err := evm.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		zap.L().Error("failed to get last block number", zap.Error(err))
		return nil, err
	}
	return header.Number, nil
}

// Close releases the underlying connection when the backend owns one.
func (evm *EVMClient) Close() {
	if c, ok := evm.Client.(interface{ Close() }); ok {
		c.Close()
	}
}
