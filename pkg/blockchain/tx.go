package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// ErrNoSigner is returned when a transaction must be signed but no key is set.
var ErrNoSigner = errors.New("private key is required for transactions")

// receiptPollInterval is the first delay of WaitForTransaction.
var receiptPollInterval = time.Second

// UnsignedTx is a populated contract call: destination, calldata and value.
// It is what the SDK returns for every state-changing operation; callers sign
// and send it with SendTransaction or their own wallet.
type UnsignedTx struct {
	To    common.Address `json:"to"`
	From  common.Address `json:"from,omitempty"`
	Data  []byte         `json:"data"`
	Value *big.Int       `json:"value,omitempty"`
}

// CallMsg converts tx into a message usable for gas estimation or eth_call.
func (tx *UnsignedTx) CallMsg() ethereum.CallMsg {
	to := tx.To
	return ethereum.CallMsg{From: tx.From, To: &to, Value: tx.Value, Data: tx.Data}
}

// GetTransactOpts creates a transactor bound to the given chainID and ECDSA key.
func GetTransactOpts(chainID *big.Int, pk *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	if pk == nil {
		return nil, ErrNoSigner
	}
	opts, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		zap.L().Error("failed to create transactor", zap.Error(err))
		return nil, err
	}
	return opts, nil
}

// GetTransactOpts creates a transactor for the connected chain.
func (evm *EVMClient) GetTransactOpts(pk *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	if pk == nil {
		return nil, ErrNoSigner
	}
	return GetTransactOpts(evm.ChainID, pk)
}

// SendTransaction signs tx as an EIP-1559 transaction with pk and submits it.
// Nonce, fee caps and gas limit are taken from the node.
func (evm *EVMClient) SendTransaction(ctx context.Context, tx *UnsignedTx, pk *ecdsa.PrivateKey) (*types.Transaction, error) {
	if pk == nil {
		return nil, ErrNoSigner
	}
	from := *GetAddressFromPrivateKeyECDSA(pk)
	msg := *tx
	msg.From = from

	nonce, err := evm.Client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}
	tip, err := evm.Client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas tip: %w", err)
	}
	head, err := evm.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("latest header: %w", err)
	}
	feeCap := new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}
	gas, err := evm.Client.EstimateGas(ctx, msg.CallMsg())
	if err != nil {
		if reason, ok := RevertReason(err); ok {
			return nil, fmt.Errorf("estimate gas: execution reverted: %s", reason)
		}
		return nil, fmt.Errorf("estimate gas: %w", err)
	}

	value := msg.Value
	if value == nil {
		value = new(big.Int)
	}
	to := msg.To
	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID:   evm.ChainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      msg.Data,
	})
	signed, err := types.SignTx(unsigned, types.LatestSignerForChainID(evm.ChainID), pk)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	if err := evm.Client.SendTransaction(ctx, signed); err != nil {
		zap.L().Error("failed to send transaction", zap.String("to", to.Hex()), zap.Error(err))
		return nil, err
	}
	zap.L().Debug("transaction sent",
		zap.String("hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas))
	return signed, nil
}

// WaitForTransaction polls for a transaction receipt with exponential backoff,
// until receipt is available, context is done, or an error occurs. If maxBackoff
// is non-zero, backoff will not exceed it. It returns an error if the tx is reverted.
func (evm *EVMClient) WaitForTransaction(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) (*types.Receipt, error) {
	backoff := receiptPollInterval
	for {
		receipt, err := evm.Client.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return nil, fmt.Errorf("tx reverted: %s", txHash)
			}
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			if maxBackoff > 0 && backoff > maxBackoff {
				backoff = maxBackoff
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("receipt error: %w", err)
		}
	}
}
