package diamond

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shamank/ets-sdk-go/pkg/model"
)

// InitSignature is the generic initializer every facet may expose. It is
// called once through diamondCut and must never be routed by the diamond.
const InitSignature = "init(bytes)"

// ERC165Selector is supportsInterface(bytes4). Only the loupe facet
// registers it; other facets drop it before cutting.
var ERC165Selector = Selector{0x01, 0xff, 0xc9, 0xa7}

// Selector is the 4-byte function identifier a diamond dispatches on.
type Selector [4]byte

// SelectorOf returns the first four bytes of keccak256(signature). The
// signature is hashed as given; see CanonicalSignature.
func SelectorOf(signature string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(signature))[:4])
	return s
}

// ParseSelector decodes a 0x-prefixed 4-byte hex string.
func ParseSelector(s string) (Selector, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Selector{}, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	if len(b) != 4 {
		return Selector{}, fmt.Errorf("invalid selector %q: want 4 bytes, got %d", s, len(b))
	}
	var sel Selector
	copy(sel[:], b)
	return sel, nil
}

func (s Selector) String() string {
	return hexutil.Encode(s[:])
}

// FacetFunction is one externally callable function of a facet interface.
type FacetFunction struct {
	Signature string
	Excluded  bool
}

// Interface is the ordered callable surface of a facet.
type Interface []FacetFunction

// Signatures returns every signature, excluded ones included, in order.
func (iface Interface) Signatures() []string {
	out := make([]string, len(iface))
	for i, fn := range iface {
		out[i] = fn.Signature
	}
	return out
}

// Exclude returns a copy of iface with the named signatures marked excluded.
// Signatures are matched exactly.
func (iface Interface) Exclude(signatures ...string) Interface {
	drop := make(map[string]struct{}, len(signatures))
	for _, s := range signatures {
		drop[s] = struct{}{}
	}
	out := make(Interface, len(iface))
	for i, fn := range iface {
		if _, ok := drop[fn.Signature]; ok {
			fn.Excluded = true
		}
		out[i] = fn
	}
	return out
}

// ComputeSelectors returns the selector of every non-excluded function in
// interface order.
func ComputeSelectors(iface Interface) []Selector {
	out := make([]Selector, 0, len(iface))
	for _, fn := range iface {
		if fn.Excluded {
			continue
		}
		out = append(out, SelectorOf(fn.Signature))
	}
	return out
}

// RemoveSelectors returns sels without the selectors of signatures. Each
// signature is canonicalized first, so "function foo(uint a)" removes
// foo(uint256). The relative order of the remaining selectors is kept.
func RemoveSelectors(sels []Selector, signatures []string) ([]Selector, error) {
	drop, err := selectorSet(signatures)
	if err != nil {
		return nil, err
	}
	out := make([]Selector, 0, len(sels))
	for _, s := range sels {
		if _, ok := drop[s]; !ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// GetSelectors returns the subset of sels matching signatures, in the order
// of sels.
func GetSelectors(sels []Selector, signatures []string) ([]Selector, error) {
	keep, err := selectorSet(signatures)
	if err != nil {
		return nil, err
	}
	out := make([]Selector, 0, len(keep))
	for _, s := range sels {
		if _, ok := keep[s]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func selectorSet(signatures []string) (map[Selector]struct{}, error) {
	set := make(map[Selector]struct{}, len(signatures))
	for _, sig := range signatures {
		canon, err := CanonicalSignature(sig)
		if err != nil {
			return nil, &SelectorError{Signature: sig, Err: err}
		}
		set[SelectorOf(canon)] = struct{}{}
	}
	return set, nil
}

// FindFacetPosition returns the index of the facet deployed at addr in a
// loupe facets() result.
func FindFacetPosition(addr common.Address, facets []model.Facet) (int, bool) {
	for i, f := range facets {
		if f.FacetAddress == addr {
			return i, true
		}
	}
	return -1, false
}

// FromFacet converts the selectors of a loupe entry.
func FromFacet(f model.Facet) []Selector {
	out := make([]Selector, len(f.FunctionSelectors))
	for i, s := range f.FunctionSelectors {
		out[i] = Selector(s)
	}
	return out
}

// Bytes4 converts sels to the representation diamondCut packs.
func Bytes4(sels []Selector) [][4]byte {
	out := make([][4]byte, len(sels))
	for i, s := range sels {
		out[i] = s
	}
	return out
}
