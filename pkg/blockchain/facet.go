package blockchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"
)

// DecodedLog is a contract log with its arguments in ABI declaration order.
// Err is set when the log matched the subscription but could not be decoded.
type DecodedLog struct {
	Name string
	Args []any
	Raw  types.Log
	Err  error
}

// Facet binds one ABI to one diamond address. It is the untyped layer the
// typed facets and the listener registry are built on.
type Facet struct {
	name     string
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

// NewFacet binds the parsed ABI at address through backend.
func NewFacet(name string, address common.Address, parsed abi.ABI, backend bind.ContractBackend) *Facet {
	return &Facet{
		name:     name,
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}
}

func (f *Facet) Name() string            { return f.name }
func (f *Facet) Address() common.Address { return f.address }
func (f *Facet) ABI() abi.ABI            { return f.abi }

// Call invokes a constant method as from and returns its unpacked outputs.
func (f *Facet) Call(ctx context.Context, from common.Address, method string, args ...any) ([]any, error) {
	var out []any
	opts := &bind.CallOpts{Context: ctx, From: from}
	if err := f.contract.Call(opts, &out, method, args...); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s.%s returned no values", f.name, method)
	}
	return out, nil
}

// Populate packs a method call into an unsigned transaction addressed to the
// facet. Nothing is sent.
func (f *Facet) Populate(method string, args ...any) (*UnsignedTx, error) {
	data, err := f.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s.%s: %w", f.name, method, err)
	}
	return &UnsignedTx{To: f.address, Data: data}, nil
}

// SubscribeEvent watches new logs of the named event and delivers them decoded
// to sink. Logs that fail to decode are delivered with Err set; the
// subscription ends only on transport failure, ctx cancellation or Unsubscribe.
func (f *Facet) SubscribeEvent(ctx context.Context, name string, sink chan<- *DecodedLog) (event.Subscription, error) {
	ev, ok := f.abi.Events[name]
	if !ok {
		return nil, fmt.Errorf("%s has no event %q", f.name, name)
	}
	logs, sub, err := f.contract.WatchLogs(&bind.WatchOpts{Context: ctx}, name)
	if err != nil {
		zap.L().Error("failed to watch contract logs",
			zap.String("facet", f.name), zap.String("event", name), zap.Error(err))
		return nil, err
	}
	zap.L().Debug("subscribed to contract event",
		zap.String("facet", f.name), zap.String("event", name), zap.String("address", f.address.Hex()))

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case lg := <-logs:
				decoded, err := decodeEvent(ev, lg)
				if err != nil {
					decoded = &DecodedLog{Name: name, Raw: lg, Err: err}
				}
				select {
				case sink <- decoded:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// DecodeLog decodes a log emitted by this facet, selecting the event by its
// first topic.
func (f *Facet) DecodeLog(lg types.Log) (*DecodedLog, error) {
	if len(lg.Topics) == 0 {
		return nil, errors.New("log has no topics")
	}
	ev, err := f.abi.EventByID(lg.Topics[0])
	if err != nil {
		return nil, err
	}
	return decodeEvent(*ev, lg)
}

func decodeEvent(ev abi.Event, lg types.Log) (*DecodedLog, error) {
	if len(lg.Topics) == 0 || lg.Topics[0] != ev.ID {
		return nil, fmt.Errorf("log is not a %s event", ev.Name)
	}
	values := make(map[string]any, len(ev.Inputs))
	if err := ev.Inputs.UnpackIntoMap(values, lg.Data); err != nil {
		return nil, fmt.Errorf("unpack %s data: %w", ev.Name, err)
	}
	var indexed abi.Arguments
	for _, in := range ev.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if err := abi.ParseTopicsIntoMap(values, indexed, lg.Topics[1:]); err != nil {
		return nil, fmt.Errorf("parse %s topics: %w", ev.Name, err)
	}
	args := make([]any, len(ev.Inputs))
	for i, in := range ev.Inputs {
		args[i] = values[in.Name]
	}
	return &DecodedLog{Name: ev.Name, Args: args, Raw: lg}, nil
}
