package config

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestConfig_Validate_Success(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   Config
	}{
		{
			name: "with defaults",
			config: &Config{
				RPCAddr: "wss://api.avax-test.network/ext/bc/C/ws",
			},
			want: Config{
				RPCAddr:    "wss://api.avax-test.network/ext/bc/C/ws",
				GatewayURL: DefaultGatewayURL,
				IpfsURL:    DefaultIpfsURL,
				ServerURL:  DefaultServerURL,
				Network:    Fuji,
			},
		},
		{
			name: "with custom values",
			config: &Config{
				RPCAddr:    "wss://avalanche.example/ws",
				GatewayURL: "https://custom.gateway/ipfs/",
				IpfsURL:    "http://ipfs.internal:5001",
				ServerURL:  "https://ets.example/",
				Network:    Avalanche,
			},
			want: Config{
				RPCAddr:    "wss://avalanche.example/ws",
				GatewayURL: "https://custom.gateway/ipfs/",
				IpfsURL:    "http://ipfs.internal:5001",
				ServerURL:  "https://ets.example",
				Network:    Avalanche,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			if tt.config.RPCAddr != tt.want.RPCAddr {
				t.Errorf("RPCAddr = %v, want %v", tt.config.RPCAddr, tt.want.RPCAddr)
			}
			if tt.config.GatewayURL != tt.want.GatewayURL {
				t.Errorf("GatewayURL = %v, want %v", tt.config.GatewayURL, tt.want.GatewayURL)
			}
			if tt.config.IpfsURL != tt.want.IpfsURL {
				t.Errorf("IpfsURL = %v, want %v", tt.config.IpfsURL, tt.want.IpfsURL)
			}
			if tt.config.ServerURL != tt.want.ServerURL {
				t.Errorf("ServerURL = %v, want %v", tt.config.ServerURL, tt.want.ServerURL)
			}
			if tt.config.Network != tt.want.Network {
				t.Errorf("Network = %v, want %v", tt.config.Network, tt.want.Network)
			}
		})
	}
}

func TestConfig_GetPrivateKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	hexKey := hex.EncodeToString(crypto.FromECDSA(key))

	tests := []struct {
		name       string
		privateKey string
		wantNil    bool
	}{
		{name: "empty private key", privateKey: "", wantNil: true},
		{name: "invalid key", privateKey: strings.Repeat("x", 64), wantNil: true},
		{name: "valid key", privateKey: hexKey},
		{name: "valid key with 0x prefix", privateKey: "0x" + hexKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				PrivateKey: tt.privateKey,
			}

			got := config.GetPrivateKey()
			if tt.wantNil && got != nil {
				t.Errorf("GetPrivateKey() = %v, want nil", got)
			}
			if !tt.wantNil {
				if got == nil {
					t.Fatal("GetPrivateKey() = nil, want key")
				}
				if crypto.PubkeyToAddress(got.PublicKey) != crypto.PubkeyToAddress(key.PublicKey) {
					t.Error("GetPrivateKey() returned a different key")
				}
			}
		})
	}
}

func TestConfig_HasPrivateKey(t *testing.T) {
	if (&Config{PrivateKey: strings.Repeat("a", 64)}).HasPrivateKey() != true {
		t.Error("HasPrivateKey() = false, want true")
	}
	if (&Config{}).HasPrivateKey() {
		t.Error("HasPrivateKey() = true, want false")
	}
}

func TestConfig_RequirePrivateKey(t *testing.T) {
	t.Run("with private key", func(t *testing.T) {
		config := &Config{
			PrivateKey: strings.Repeat("a", 64),
		}

		if _, err := config.RequirePrivateKey(); err != nil {
			t.Errorf("RequirePrivateKey() error = %v", err)
		}
	})

	t.Run("without private key", func(t *testing.T) {
		config := &Config{}

		_, err := config.RequirePrivateKey()
		if err == nil {
			t.Fatal("RequirePrivateKey() should error when no key is set")
		}

		expectedErr := "private key is required for this operation"
		if err.Error() != expectedErr {
			t.Errorf("expected error %q, got %q", expectedErr, err.Error())
		}
	})
}

func TestParsePrivateKey(t *testing.T) {
	tests := []struct {
		name    string
		keyHex  string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "too short",
			keyHex:  "123",
			wantErr: true,
			errMsg:  "private key must be 32 bytes (64 hex characters), got 3",
		},
		{
			name:    "too long",
			keyHex:  strings.Repeat("a", 128),
			wantErr: true,
			errMsg:  "private key must be 32 bytes (64 hex characters), got 128",
		},
		{
			name:    "invalid hex",
			keyHex:  strings.Repeat("z", 64),
			wantErr: true,
		},
		{
			name:   "with 0x prefix",
			keyHex: "0x" + strings.Repeat("a", 64),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePrivateKey(tt.keyHex)

			if tt.wantErr {
				if err == nil {
					t.Fatal("parsePrivateKey() expected error, got nil")
				}
				if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("error = %q, want %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePrivateKey() error = %v", err)
			}
		})
	}
}

func TestNetwork_Presets(t *testing.T) {
	if Fuji.ChainID != "43113" {
		t.Errorf("Fuji.ChainID = %s, want 43113", Fuji.ChainID)
	}
	if Fuji.Token != "AVAX" {
		t.Errorf("Fuji.Token = %s, want AVAX", Fuji.Token)
	}
	if Fuji.Label != "Avalanche Fuji Testnet" {
		t.Errorf("Fuji.Label = %s", Fuji.Label)
	}
	if id, ok := Avalanche.ChainIDBig(); !ok || id.Int64() != 43114 {
		t.Errorf("Avalanche chain id = %v", id)
	}
}

func TestConfig_FullWorkflow(t *testing.T) {
	config := &Config{
		RPCAddr:    DefaultRPCAddr,
		PrivateKey: "",
		Debug:      true,
	}

	err := config.Validate()
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if config.GatewayURL == "" {
		t.Error("GatewayURL should have default value")
	}
	if config.Network.ChainID == "" {
		t.Error("Network should have default value")
	}

	timeouts := config.Timeouts.WithDefaults()
	if timeouts.Dial == 0 {
		t.Error("Dial timeout should have default value")
	}

	if config.HasPrivateKey() {
		t.Error("should not have private key")
	}
	if config.GetPrivateKey() != nil {
		t.Error("GetPrivateKey() should return nil when no key is set")
	}
}
