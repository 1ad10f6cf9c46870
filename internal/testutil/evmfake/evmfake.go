// Package evmfake is an in-memory stand-in for an Ethereum JSON-RPC client
// used in tests: contract calls are answered by registered handlers, logs are
// pushed to subscribers with Emit and sent transactions are recorded.
package evmfake

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// CallHandler answers a contract call with unpacked inputs and outputs.
type CallHandler func(from common.Address, args []any) ([]any, error)

type callKey struct {
	to       common.Address
	selector [4]byte
}

type callRoute struct {
	method abi.Method
	fn     CallHandler
}

type logSub struct {
	q    ethereum.FilterQuery
	logs chan types.Log
	fail chan error
}

// Backend implements the subset of ethclient.Client used by the SDK.
type Backend struct {
	ChainIDValue *big.Int
	BaseFee      *big.Int
	TipCap       *big.Int
	Gas          uint64

	mu       sync.Mutex
	calls    map[callKey]callRoute
	subs     []*logSub
	nonces   map[common.Address]uint64
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	estimate func(ethereum.CallMsg) error
}

// New returns a backend reporting chainID.
func New(chainID int64) *Backend {
	return &Backend{
		ChainIDValue: big.NewInt(chainID),
		BaseFee:      big.NewInt(25_000_000_000),
		TipCap:       big.NewInt(1_500_000_000),
		Gas:          210_000,
		calls:        map[callKey]callRoute{},
		nonces:       map[common.Address]uint64{},
		receipts:     map[common.Hash]*types.Receipt{},
	}
}

// OnCall routes calls of method on contract to fn.
func (b *Backend) OnCall(to common.Address, parsed abi.ABI, method string, fn CallHandler) {
	m, ok := parsed.Methods[method]
	if !ok {
		panic(fmt.Sprintf("evmfake: abi has no method %q", method))
	}
	var sel [4]byte
	copy(sel[:], m.ID)
	b.mu.Lock()
	b.calls[callKey{to, sel}] = callRoute{method: m, fn: fn}
	b.mu.Unlock()
}

// OnEstimate installs a hook that may reject gas estimation, e.g. to simulate
// a revert.
func (b *Backend) OnEstimate(fn func(ethereum.CallMsg) error) {
	b.mu.Lock()
	b.estimate = fn
	b.mu.Unlock()
}

// Emit delivers lg to every subscription whose filter matches it.
func (b *Backend) Emit(lg types.Log) {
	b.mu.Lock()
	subs := slices.Clone(b.subs)
	b.mu.Unlock()
	for _, s := range subs {
		if matches(s.q, lg) {
			s.logs <- lg
		}
	}
}

// FailSubscriptions ends every live subscription with err.
func (b *Backend) FailSubscriptions(err error) {
	b.mu.Lock()
	subs := slices.Clone(b.subs)
	b.mu.Unlock()
	for _, s := range subs {
		select {
		case s.fail <- err:
		default:
		}
	}
}

// Subscriptions reports the number of live log subscriptions.
func (b *Backend) Subscriptions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Sent returns the transactions received by SendTransaction.
func (b *Backend) Sent() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.sent)
}

// SetReceipt makes TransactionReceipt return r for hash.
func (b *Backend) SetReceipt(hash common.Hash, r *types.Receipt) {
	b.mu.Lock()
	b.receipts[hash] = r
	b.mu.Unlock()
}

func (b *Backend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *Backend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, errors.New("evmfake: malformed call")
	}
	var sel [4]byte
	copy(sel[:], msg.Data[:4])
	b.mu.Lock()
	route, ok := b.calls[callKey{*msg.To, sel}]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("evmfake: no handler for %x on %s", sel, msg.To.Hex())
	}
	args, err := route.method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	out, err := route.fn(msg.From, args)
	if err != nil {
		return nil, err
	}
	return route.method.Outputs.Pack(out...)
}

func (b *Backend) PendingCodeAt(ctx context.Context, a common.Address) ([]byte, error) {
	return b.CodeAt(ctx, a, nil)
}

func (b *Backend) PendingNonceAt(_ context.Context, a common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonces[a], nil
}

func (b *Backend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return new(big.Int).Add(b.BaseFee, b.TipCap), nil
}

func (b *Backend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.TipCap), nil
}

func (b *Backend) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	b.mu.Lock()
	hook := b.estimate
	b.mu.Unlock()
	if hook != nil {
		if err := hook(msg); err != nil {
			return 0, err
		}
	}
	return b.Gas, nil
}

func (b *Backend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if tx.Nonce() != b.nonces[from] {
		return fmt.Errorf("nonce too low: have %d, want %d", tx.Nonce(), b.nonces[from])
	}
	b.nonces[from]++
	b.sent = append(b.sent, tx)
	return nil
}

func (b *Backend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: new(big.Int).Set(b.BaseFee)}, nil
}

func (b *Backend) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.ChainIDValue), nil
}

func (b *Backend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (b *Backend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (b *Backend) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	s := &logSub{q: q, logs: make(chan types.Log, 64), fail: make(chan error, 1)}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer b.remove(s)
		for {
			select {
			case lg := <-s.logs:
				select {
				case ch <- lg:
				case <-quit:
					return nil
				}
			case err := <-s.fail:
				return err
			case <-ctx.Done():
				return nil
			case <-quit:
				return nil
			}
		}
	}), nil
}

func (b *Backend) Close() {}

func (b *Backend) remove(s *logSub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = slices.DeleteFunc(b.subs, func(x *logSub) bool { return x == s })
}

func matches(q ethereum.FilterQuery, lg types.Log) bool {
	if len(q.Addresses) > 0 && !slices.Contains(q.Addresses, lg.Address) {
		return false
	}
	for i, want := range q.Topics {
		if len(want) == 0 {
			continue
		}
		if i >= len(lg.Topics) || !slices.Contains(want, lg.Topics[i]) {
			return false
		}
	}
	return true
}

// Log encodes an event of parsed emitted by address. Arguments are given in
// ABI declaration order.
func Log(parsed abi.ABI, address common.Address, name string, args ...any) (types.Log, error) {
	ev, ok := parsed.Events[name]
	if !ok {
		return types.Log{}, fmt.Errorf("evmfake: abi has no event %q", name)
	}
	if len(args) != len(ev.Inputs) {
		return types.Log{}, fmt.Errorf("evmfake: %s takes %d arguments, got %d", name, len(ev.Inputs), len(args))
	}
	topics := []common.Hash{ev.ID}
	var data []any
	for i, in := range ev.Inputs {
		if !in.Indexed {
			data = append(data, args[i])
			continue
		}
		t, err := abi.MakeTopics([]any{args[i]})
		if err != nil {
			return types.Log{}, fmt.Errorf("evmfake: topic %s: %w", in.Name, err)
		}
		topics = append(topics, t[0][0])
	}
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return types.Log{}, fmt.Errorf("evmfake: pack %s: %w", name, err)
	}
	return types.Log{
		Address:     address,
		Topics:      topics,
		Data:        packed,
		BlockNumber: 100,
		TxHash:      common.BytesToHash(ev.ID[:8]),
	}, nil
}

// MustLog is Log that panics on error.
func MustLog(parsed abi.ABI, address common.Address, name string, args ...any) types.Log {
	lg, err := Log(parsed, address, name, args...)
	if err != nil {
		panic(err)
	}
	return lg
}
