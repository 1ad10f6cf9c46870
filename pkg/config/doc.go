// Package config provides configuration management for the Event Ticketing SDK.
//
// This package defines the Config structure that controls all SDK behavior including
// network settings, RPC endpoints, contract addresses, storage gateways, the
// ticketing backend, logging, metadata resolution and timeouts.
//
// # Basic Configuration
//
// The minimum required configuration needs an RPC endpoint:
//
//	cfg := &config.Config{
//		RPCAddr: config.DefaultRPCAddr,
//	}
//
// Everything else falls back to the Avalanche Fuji deployment.
//
// # Network Selection
//
// Two predefined networks are available:
//
//	config.Fuji      - Avalanche Fuji testnet (ChainID: 43113 / 0xa869)
//	config.Avalanche - Avalanche C-Chain (ChainID: 43114)
//
// ChainID accepts decimal or 0x-prefixed hex.
//
// # RPC Endpoints
//
// Reads and transaction population work over HTTP/HTTPS. Listening for
// contract logs requires a WebSocket endpoint:
//
//	cfg.RPCAddr = "wss://api.avax-test.network/ext/bc/C/ws"
//
// # Contracts
//
// EventsAddr is the events diamond. The event facet and the ticket controller
// facet are both reached through it. TicketsAddr is the tickets diamond.
//
// # Storage
//
// Content locators returned by the contracts use the ipfs:// scheme. GatewayURL
// replaces that prefix for retrieval:
//
//	cfg.GatewayURL = "https://nftstorage.link/ipfs/" // default
//
// IpfsURL points at a Kubo RPC endpoint used to upload and unpin metadata.
//
// # Metadata Resolution
//
// Batch resolution is fail-fast by default. ContinueOnError resolves every
// item and reports the failures together:
//
//	cfg.Metadata.BatchPolicy = config.ContinueOnError
//	cfg.Metadata.RateLimit = 5 // gateway requests per second
//
// # Loading
//
// Load reads an optional YAML file, applies ETS_* environment overrides and
// validates the result:
//
//	cfg, err := config.Load("ets.yaml")
//
// Recognized variables: ETS_RPC_URL, ETS_PRIVATE_KEY, ETS_CHAIN_ID,
// ETS_EVENTS_ADDRESS, ETS_TICKETS_ADDRESS, ETS_GATEWAY_URL, ETS_IPFS_URL,
// ETS_SERVER_URL, ETS_LOG_LEVEL, ETS_LOG_FORMAT, ETS_DEBUG, ETS_BATCH_POLICY,
// ETS_FETCH_RATE_LIMIT.
//
// # Configuration Validation
//
// Always call Validate() to apply defaults and check required fields:
//
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
// # Thread Safety
//
// Config instances should be created once and not modified after passing to sdk.NewSDK().
package config
