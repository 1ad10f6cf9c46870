// Package config defines the runtime configuration for the SDK, including
// network settings, RPC endpoint, contract addresses, storage gateways,
// logging, metadata resolution policy and operation timeouts. It also provides
// loading, validation and defaulting helpers.
package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGatewayURL    = "https://nftstorage.link/ipfs/"
	DefaultIpfsURL       = "http://127.0.0.1:5001"
	DefaultLighthouseURL = "https://gateway.lighthouse.storage/ipfs/"
	DefaultServerURL     = "http://127.0.0.1:1337"

	// DefaultEventsAddr is the events diamond on Avalanche Fuji. The event and
	// ticket controller facets are both reached through it.
	DefaultEventsAddr = "0x540Be9Ac59c6F1fc9D8775Ddfe0c44b21F35f32A"
	// DefaultTicketsAddr is the tickets diamond on Avalanche Fuji.
	DefaultTicketsAddr = "0x028A8D904cc0c966d66b0397e55ba71Bc40e57f2"
)

// Config holds all SDK settings required to initialize blockchain, storage and
// backend clients. Use Validate to fill implicit defaults and to check for
// required fields.
type Config struct {
	// Network selects the target chain (chain ID, name, token and label).
	Network Network `json:"network" yaml:"network"`
	// RPCAddr is the EVM RPC/WS endpoint URL (required). Listening for logs
	// needs a WebSocket endpoint.
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr"`
	// PrivateKey is the hex-encoded ECDSA private key used to sign populated
	// transactions (optional for read-only usage).
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// EventsAddr is the events diamond address (EventFacet and
	// EventTicketControllerFacet).
	EventsAddr string `json:"events_addr" yaml:"events_addr"`
	// TicketsAddr is the tickets diamond address (TicketFacet).
	TicketsAddr string `json:"tickets_addr" yaml:"tickets_addr"`
	// GatewayURL replaces the ipfs:// prefix of content locators.
	// Default: https://nftstorage.link/ipfs/
	GatewayURL string `json:"gateway_url" yaml:"gateway_url"`
	// IpfsURL is the HTTP API endpoint of the IPFS (Kubo) node used to upload,
	// read and unpin metadata.
	IpfsURL string `json:"ipfs_url" yaml:"ipfs_url"`
	// LighthouseURL is the HTTP gateway used to fetch Filecoin-backed content.
	LighthouseURL string `json:"lighthouse_url" yaml:"lighthouse_url"`
	// ServerURL is the base URL of the ticketing backend REST API.
	ServerURL string `json:"server_url" yaml:"server_url"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Log configures the SDK logger.
	Log LogConfig `json:"log" yaml:"log"`
	// Metadata configures the metadata resolver.
	Metadata MetadataConfig `json:"metadata" yaml:"metadata"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Network describes a blockchain network. ChainID is used for EIP-155
// signing; the other fields are informational.
type Network struct {
	ChainID string `json:"chain_id" yaml:"chain_id"`
	Name    string `json:"network_name" yaml:"network_name"`
	Token   string `json:"token" yaml:"token"`
	Label   string `json:"label" yaml:"label"`
}

// ChainIDBig parses ChainID as a decimal or 0x-prefixed hex integer.
func (n Network) ChainIDBig() (*big.Int, bool) {
	s := strings.TrimSpace(n.ChainID)
	if s == "" {
		return nil, false
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	id, ok := new(big.Int).SetString(s, base)
	if !ok || id.Sign() <= 0 {
		return nil, false
	}
	return id, true
}

// Fuji is the predefined Network for the Avalanche Fuji testnet (0xa869).
var Fuji = Network{
	ChainID: "43113",
	Name:    "fuji",
	Token:   "AVAX",
	Label:   "Avalanche Fuji Testnet",
}

// Avalanche is the predefined Network for the Avalanche C-Chain.
var Avalanche = Network{
	ChainID: "43114",
	Name:    "avalanche",
	Token:   "AVAX",
	Label:   "Avalanche C-Chain",
}

// DefaultRPCAddr is the public Fuji C-Chain endpoint.
const DefaultRPCAddr = "https://api.avax-test.network/ext/bc/C/rpc"

// LogConfig controls logger construction.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info (debug when Debug is set).
	Level string `json:"level" yaml:"level"`
	// Format is console or json. Default: console.
	Format string `json:"format" yaml:"format"`
	// File, when set, additionally writes rotated logs to this path.
	File       string `json:"file" yaml:"file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `json:"compress" yaml:"compress"`
}

// BatchPolicy selects how batch metadata resolution reacts to a failed item.
type BatchPolicy string

const (
	// FailFast stops at the first failure and returns only that error.
	FailFast BatchPolicy = "fail_fast"
	// ContinueOnError resolves every item and reports failures together.
	ContinueOnError BatchPolicy = "continue"
)

// MetadataConfig configures gateway document retrieval.
type MetadataConfig struct {
	// BatchPolicy defaults to FailFast.
	BatchPolicy BatchPolicy `json:"batch_policy" yaml:"batch_policy"`
	// RateLimit is the maximum number of gateway requests per second. Zero disables limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`
	// Burst is the limiter burst size. Default: 1.
	Burst int `json:"burst" yaml:"burst"`
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration `json:"dial" yaml:"dial"`                 // RPC dial/connect
	ChainRead   time.Duration `json:"chain_read" yaml:"chain_read"`     // eth_call
	ChainSubmit time.Duration `json:"chain_submit" yaml:"chain_submit"` // send tx
	ReceiptWait time.Duration `json:"receipt_wait" yaml:"receipt_wait"` // wait tx
	Fetch       time.Duration `json:"fetch" yaml:"fetch"`               // gateway and REST requests
	Upload      time.Duration `json:"upload" yaml:"upload"`             // IPFS add
}

// Validate normalizes the configuration by applying implicit defaults for
// gateways, contract addresses, network and logging, and verifies the fields
// that cannot be defaulted. Returns an error when RPCAddr is empty or an
// address or policy is malformed.
func (c *Config) Validate() error {

	if c.GatewayURL == "" {
		c.GatewayURL = DefaultGatewayURL
	}

	if c.IpfsURL == "" {
		c.IpfsURL = DefaultIpfsURL
	}

	if c.LighthouseURL == "" {
		c.LighthouseURL = DefaultLighthouseURL
	}

	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")

	if c.Network.ChainID == "" {
		c.Network = Fuji
	}

	if c.EventsAddr == "" {
		c.EventsAddr = DefaultEventsAddr
	}

	if c.TicketsAddr == "" {
		c.TicketsAddr = DefaultTicketsAddr
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
		if c.Debug {
			c.Log.Level = "debug"
		}
	}

	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	if c.Metadata.BatchPolicy == "" {
		c.Metadata.BatchPolicy = FailFast
	}

	if c.RPCAddr == "" {
		return errors.New("RPC address is required")
	}

	if !common.IsHexAddress(c.EventsAddr) {
		return fmt.Errorf("invalid events address %q", c.EventsAddr)
	}

	if !common.IsHexAddress(c.TicketsAddr) {
		return fmt.Errorf("invalid tickets address %q", c.TicketsAddr)
	}

	if _, ok := c.Network.ChainIDBig(); !ok {
		return fmt.Errorf("invalid chain id %q", c.Network.ChainID)
	}

	switch c.Metadata.BatchPolicy {
	case FailFast, ContinueOnError:
	default:
		return fmt.Errorf("unknown batch policy %q", c.Metadata.BatchPolicy)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}

// GetPrivateKey parses PrivateKey. It returns nil when the key is unset or
// cannot be parsed.
func (c *Config) GetPrivateKey() *ecdsa.PrivateKey {
	if c.PrivateKey == "" {
		return nil
	}
	pk, err := parsePrivateKey(c.PrivateKey)
	if err != nil {
		return nil
	}
	return pk
}

// HasPrivateKey reports whether a signing key is configured.
func (c *Config) HasPrivateKey() bool {
	return c.PrivateKey != ""
}

// RequirePrivateKey returns the parsed signing key or an error when it is
// missing or malformed.
func (c *Config) RequirePrivateKey() (*ecdsa.PrivateKey, error) {
	if c.PrivateKey == "" {
		return nil, errors.New("private key is required for this operation")
	}
	return parsePrivateKey(c.PrivateKey)
}

func parsePrivateKey(keyHex string) (*ecdsa.PrivateKey, error) {
	keyHex = strings.TrimPrefix(keyHex, "0x")
	if len(keyHex) != 64 {
		return nil, fmt.Errorf("private key must be 32 bytes (64 hex characters), got %d", len(keyHex))
	}
	pk, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return pk, nil
}

// LoadFromFile merges the YAML document at path into c.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// LoadFromEnv overrides fields from ETS_* environment variables.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("ETS_RPC_URL"); v != "" {
		c.RPCAddr = v
	}
	if v := os.Getenv("ETS_PRIVATE_KEY"); v != "" {
		c.PrivateKey = v
	}
	if v := os.Getenv("ETS_CHAIN_ID"); v != "" {
		c.Network.ChainID = v
	}
	if v := os.Getenv("ETS_EVENTS_ADDRESS"); v != "" {
		c.EventsAddr = v
	}
	if v := os.Getenv("ETS_TICKETS_ADDRESS"); v != "" {
		c.TicketsAddr = v
	}
	if v := os.Getenv("ETS_GATEWAY_URL"); v != "" {
		c.GatewayURL = v
	}
	if v := os.Getenv("ETS_IPFS_URL"); v != "" {
		c.IpfsURL = v
	}
	if v := os.Getenv("ETS_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("ETS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ETS_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("ETS_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ETS_DEBUG: %w", err)
		}
		c.Debug = b
	}
	if v := os.Getenv("ETS_BATCH_POLICY"); v != "" {
		c.Metadata.BatchPolicy = BatchPolicy(v)
	}
	if v := os.Getenv("ETS_FETCH_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid ETS_FETCH_RATE_LIMIT: %w", err)
		}
		c.Metadata.RateLimit = f
	}
	return nil
}

// Load builds a Config from an optional YAML file and the environment, then
// validates it. Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
//	Fetch:       15s
//	Upload:      60s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	if tt.Fetch == 0 {
		tt.Fetch = 15 * time.Second
	}
	if tt.Upload == 0 {
		tt.Upload = 60 * time.Second
	}
	return tt
}
