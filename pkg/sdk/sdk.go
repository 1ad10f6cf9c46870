// Package sdk exposes the high-level Event Ticketing System SDK entry points.
// It wires together blockchain access (events and tickets diamonds), metadata
// storage (IPFS), the metadata resolver, the contract log listeners and the
// ticketing backend REST client.
package sdk

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shamank/ets-sdk-go/internal/logger"
	"github.com/shamank/ets-sdk-go/pkg/blockchain"
	"github.com/shamank/ets-sdk-go/pkg/config"
	"github.com/shamank/ets-sdk-go/pkg/listener"
	"github.com/shamank/ets-sdk-go/pkg/metadata"
	"github.com/shamank/ets-sdk-go/pkg/model"
	"github.com/shamank/ets-sdk-go/pkg/server"
	"github.com/shamank/ets-sdk-go/pkg/storage"
	"go.uber.org/zap"
)

// EtsSDK is the public interface of the SDK facade. State-changing methods
// return populated, unsigned transactions; Send signs and submits them with
// the configured key.
type EtsSDK interface {
	// FetchEvents resolves the metadata of eventIDs in order.
	FetchEvents(ctx context.Context, eventIDs []*big.Int) ([]model.MetadataRecord, error)

	// FetchOwnedEvents resolves every event owned by owner.
	FetchOwnedEvents(ctx context.Context, owner common.Address) ([]model.MetadataRecord, error)

	// CreateEvent uploads the event document and populates createEvent.
	CreateEvent(ctx context.Context, doc model.EventMetadata, image []byte, params model.EventParams) (*blockchain.UnsignedTx, error)

	// CreateTicketCategory uploads the category document and populates createTicketCategory.
	CreateTicketCategory(ctx context.Context, eventID *big.Int, doc model.CategoryMetadata, image []byte, data model.CategoryContractData) (*blockchain.UnsignedTx, error)

	// Send signs tx with the configured key and submits it.
	Send(ctx context.Context, tx *blockchain.UnsignedTx) (*types.Transaction, error)

	// Listeners returns the contract log listener registry.
	Listeners() *listener.Registry

	// Close stops the listeners and releases network clients.
	Close()
}

// init configures a default global zap logger for the SDK. NewSDK replaces it
// with one built from the configuration.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	l, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(l)
}

// Core is the concrete SDK implementation. It embeds the runtime
// configuration and owns one instance of every collaborator.
type Core struct {
	*config.Config

	evm       *blockchain.EVMClient
	storage   storage.Storage
	fetcher   storage.Fetcher
	resolver  *metadata.Resolver
	listeners *listener.Registry
	backend   *server.Client
	prvKey    *ecdsa.PrivateKey

	listenerErrs chan<- error
}

var _ EtsSDK = (*Core)(nil)

// Option overrides a collaborator built by New.
type Option func(*Core)

// WithStorage replaces the IPFS client.
func WithStorage(s storage.Storage) Option {
	return func(c *Core) { c.storage = s }
}

// WithFetcher replaces the HTTP fetcher used for gateway and backend requests.
func WithFetcher(f storage.Fetcher) Option {
	return func(c *Core) { c.fetcher = f }
}

// WithListenerErrors sends listener delivery failures to errs instead of the log.
func WithListenerErrors(errs chan<- error) Option {
	return func(c *Core) { c.listenerErrs = errs }
}

// NewSDK validates cfg, installs the configured logger, dials the RPC
// endpoint and builds the SDK around it.
func NewSDK(cfg *config.Config, opts ...Option) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Dial)
	defer cancel()
	evm, err := blockchain.InitEvm(ctx, cfg.RPCAddr, common.HexToAddress(cfg.EventsAddr), common.HexToAddress(cfg.TicketsAddr))
	if err != nil {
		return nil, fmt.Errorf("init ethereum client: %w", err)
	}

	if want, ok := cfg.Network.ChainIDBig(); ok && want.Cmp(evm.ChainID) != 0 {
		evm.Close()
		return nil, fmt.Errorf("rpc endpoint serves chain %s, configured network is %s", evm.ChainID, want)
	}

	return New(cfg, evm, opts...)
}

// New builds the SDK around an existing EVM client. cfg must be valid.
func New(cfg *config.Config, evm *blockchain.EVMClient, opts ...Option) (*Core, error) {
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	c := &Core{Config: cfg, evm: evm}
	for _, opt := range opts {
		opt(c)
	}

	if c.storage == nil {
		c.storage = storage.NewStorage(cfg.IpfsURL, cfg.LighthouseURL)
	}
	if c.fetcher == nil {
		c.fetcher = storage.NewHTTPFetcher(
			storage.WithTimeout(cfg.Timeouts.Fetch),
			storage.WithRateLimit(cfg.Metadata.RateLimit, cfg.Metadata.Burst),
		)
	}

	policy := metadata.FailFast
	if cfg.Metadata.BatchPolicy == config.ContinueOnError {
		policy = metadata.ContinueOnError
	}
	c.resolver = metadata.NewResolver(c.fetcher, storage.Gateway{Base: cfg.GatewayURL}, metadata.WithPolicy(policy))

	var lopts []listener.Option
	if c.listenerErrs != nil {
		lopts = append(lopts, listener.WithErrors(c.listenerErrs))
	}
	c.listeners = listener.NewRegistry(c.resolver, listener.SourcesFromClient(evm), lopts...)
	c.backend = server.NewClient(cfg.ServerURL, c.fetcher)

	if cfg.HasPrivateKey() {
		pk, err := cfg.RequirePrivateKey()
		if err != nil {
			zap.L().Warn("some methods disabled: private key parsing failed", zap.Error(err))
		} else {
			c.prvKey = pk
			if cfg.Debug {
				zap.L().Debug("signer address", zap.String("addr", blockchain.GetAddressFromPrivateKeyECDSA(pk).Hex()))
			}
		}
	}

	zap.L().Debug("sdk ready",
		zap.String("network", cfg.Network.Name),
		zap.String("events", cfg.EventsAddr),
		zap.String("tickets", cfg.TicketsAddr),
		zap.String("batchPolicy", policy.String()))
	return c, nil
}

// Evm returns the EVM client for direct contract calls.
func (c *Core) Evm() *blockchain.EVMClient { return c.evm }

// Resolver returns the metadata resolver.
func (c *Core) Resolver() *metadata.Resolver { return c.resolver }

// Listeners returns the contract log listener registry.
func (c *Core) Listeners() *listener.Registry { return c.listeners }

// Backend returns the REST backend client.
func (c *Core) Backend() *server.Client { return c.backend }

// Send signs tx with the configured key and submits it.
func (c *Core) Send(ctx context.Context, tx *blockchain.UnsignedTx) (*types.Transaction, error) {
	if c.prvKey == nil {
		return nil, blockchain.ErrNoSigner
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainSubmit)
	defer cancel()
	return c.evm.SendTransaction(ctx, tx, c.prvKey)
}

// SendAndWait sends tx and waits for its receipt.
func (c *Core) SendAndWait(ctx context.Context, tx *blockchain.UnsignedTx) (*types.Receipt, error) {
	signed, err := c.Send(ctx, tx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.ReceiptWait)
	defer cancel()
	return c.evm.WaitForTransaction(ctx, signed.Hash(), 0)
}

// Close stops the listeners and shuts down the RPC client. It waits for
// running listener callbacks; from inside one use Listeners().Stop.
func (c *Core) Close() {
	c.listeners.Close()
	c.evm.Close()
}
