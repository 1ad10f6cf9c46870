package listener

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
)

// ErrClosed is returned by registrations on a closed Registry.
var ErrClosed = errors.New("listener registry closed")

// Stages at which a delivery can fail.
const (
	StageDecode       = "decode"
	StageEnrich       = "enrich"
	StageCallback     = "callback"
	StageSubscription = "subscription"
)

// HandlerError reports a delivery that did not complete. Log is the zero
// value for subscription failures, which end the registration.
type HandlerError struct {
	Topic string
	Stage string
	Log   types.Log
	Err   error
}

func (e *HandlerError) Error() string {
	if e.Stage == StageSubscription {
		return fmt.Sprintf("%s subscription: %v", e.Topic, e.Err)
	}
	return fmt.Sprintf("%s %s (block %d, tx %s): %v", e.Topic, e.Stage, e.Log.BlockNumber, e.Log.TxHash.Hex(), e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
