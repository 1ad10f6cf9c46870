package blockchain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// weiDecimals is the number of decimals of the native token (AVAX).
const weiDecimals = 18

// Team roles of an event. AdminRole is the zero hash (OpenZeppelin
// DEFAULT_ADMIN_ROLE).
var (
	AdminRole     [32]byte
	ModeratorRole = RoleHash("MODERATOR_ROLE")
	CashierRole   = RoleHash("CASHIER_ROLE")
)

// RoleHash returns keccak256(name), the on-chain identifier of a named role.
func RoleHash(name string) [32]byte {
	return crypto.Keccak256Hash([]byte(name))
}

// ParseRole accepts either a 0x-prefixed 32-byte hex value or a role name
// such as "MODERATOR_ROLE".
func ParseRole(s string) ([32]byte, error) {
	if strings.HasPrefix(s, "0x") {
		b, err := hexutil.Decode(s)
		if err != nil || len(b) != 32 {
			return [32]byte{}, fmt.Errorf("invalid role %q: expected 32 bytes of hex", s)
		}
		return common.BytesToHash(b), nil
	}
	if s == "" {
		return [32]byte{}, errors.New("empty role")
	}
	return RoleHash(s), nil
}

// GetAddressFromPrivateKeyECDSA derives the Ethereum address from the given
// ECDSA private key. It returns nil if the key is nil or its public part cannot
// be asserted to *ecdsa.PublicKey.
func GetAddressFromPrivateKeyECDSA(privateKeyECDSA *ecdsa.PrivateKey) *common.Address {
	if privateKeyECDSA == nil {
		return nil
	}
	publicKeyECDSA, ok := privateKeyECDSA.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil
	}
	addr := crypto.PubkeyToAddress(*publicKeyECDSA)
	return &addr
}

// ParsePrivateKeyECDSA parses a hex-encoded ECDSA private key, with or without
// 0x prefix, and returns the corresponding address together with the key.
func ParsePrivateKeyECDSA(privateKey string) (common.Address, *ecdsa.PrivateKey, error) {
	privateKeyECDSA, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return common.Address{}, nil, err
	}
	addr := GetAddressFromPrivateKeyECDSA(privateKeyECDSA)
	if addr == nil {
		return common.Address{}, nil, errors.New("failed to get public key")
	}
	return *addr, privateKeyECDSA, nil
}

// ToWei converts a token amount (e.g. "1.5" AVAX) to its smallest unit.
//
// Supported input types: string, float64, int, int64, decimal.Decimal and
// *decimal.Decimal. Fractions below one wei are truncated.
func ToWei(iamount any) (*big.Int, error) {
	var amount decimal.Decimal
	switch v := iamount.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			zap.L().Error("Failed to convert string to decimal", zap.String("amount", v), zap.Error(err))
			return nil, err
		}
		amount = d
	case float64:
		amount = decimal.NewFromFloat(v)
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int64:
		amount = decimal.NewFromInt(v)
	case decimal.Decimal:
		amount = v
	case *decimal.Decimal:
		if v == nil {
			return nil, errors.New("nil amount")
		}
		amount = *v
	default:
		return nil, fmt.Errorf("unsupported amount type %T", iamount)
	}
	return amount.Shift(weiDecimals).BigInt(), nil
}

// FromWei converts a wei amount into token units with 18 digits of precision.
//
// Supported input types: string, *big.Int, int and int64. Any other type, or
// an unparsable string, yields decimal.Zero.
func FromWei(ivalue any) decimal.Decimal {
	value := new(big.Int)
	switch v := ivalue.(type) {
	case string:
		if _, ok := value.SetString(v, 10); !ok {
			zap.L().Error("Failed to parse wei amount", zap.String("value", v))
			return decimal.Zero
		}
	case *big.Int:
		if v == nil {
			return decimal.Zero
		}
		value = v
	case int:
		value.SetInt64(int64(v))
	case int64:
		value.SetInt64(v)
	default:
		zap.L().Error("Unsupported type", zap.Any("value", ivalue))
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -weiDecimals)
}

// RevertReason extracts the Solidity revert string carried by a node error.
// It understands JSON-RPC errors exposing revert data and the plain
// "execution reverted: <reason>" message form.
func RevertReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var de rpc.DataError
	if errors.As(err, &de) {
		if data, ok := de.ErrorData().(string); ok {
			if raw, derr := hexutil.Decode(data); derr == nil {
				if reason, uerr := abi.UnpackRevert(raw); uerr == nil {
					return reason, true
				}
			}
		}
	}
	if reason, ok := strings.CutPrefix(err.Error(), "execution reverted: "); ok {
		return reason, true
	}
	return "", false
}
