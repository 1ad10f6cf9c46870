package listener

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shamank/ets-sdk-go/pkg/blockchain"
)

// args reads positional log arguments, keeping the first type mismatch.
type args struct {
	d   *blockchain.DecodedLog
	err error
}

func argsOf(d *blockchain.DecodedLog) *args { return &args{d: d} }

func arg[V any](a *args, i int) V {
	var zero V
	if i >= len(a.d.Args) {
		if a.err == nil {
			a.err = fmt.Errorf("%s: missing argument %d", a.d.Name, i)
		}
		return zero
	}
	v, ok := a.d.Args[i].(V)
	if !ok && a.err == nil {
		a.err = fmt.Errorf("%s: argument %d is %T, want %T", a.d.Name, i, a.d.Args[i], zero)
	}
	return v
}

func (a *args) big(i int) *big.Int               { return arg[*big.Int](a, i) }
func (a *args) address(i int) common.Address     { return arg[common.Address](a, i) }
func (a *args) addresses(i int) []common.Address { return arg[[]common.Address](a, i) }
func (a *args) boolean(i int) bool               { return arg[bool](a, i) }
func (a *args) hash(i int) [32]byte              { return arg[[32]byte](a, i) }
func (a *args) str(i int) string                 { return arg[string](a, i) }
func (a *args) bytes(i int) []byte               { return arg[[]byte](a, i) }
