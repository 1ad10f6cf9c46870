package diamond

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shamank/ets-sdk-go/pkg/model"
	"go.uber.org/zap"
)

// ErrSelector matches every *SelectorError.
var ErrSelector = errors.New("selector computation failed")

// SelectorError reports a facet or signature that cannot be turned into a
// valid cut. Planning stops at the first one and yields no cuts.
type SelectorError struct {
	Facet     string
	Signature string
	Err       error
}

func (e *SelectorError) Error() string {
	switch {
	case e.Facet != "" && e.Signature != "":
		return fmt.Sprintf("facet %s: signature %q: %v", e.Facet, e.Signature, e.Err)
	case e.Facet != "":
		return fmt.Sprintf("facet %s: %v", e.Facet, e.Err)
	case e.Signature != "":
		return fmt.Sprintf("signature %q: %v", e.Signature, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *SelectorError) Unwrap() error { return e.Err }

func (e *SelectorError) Is(target error) bool { return target == ErrSelector }

// FacetSpec describes one facet of a deployment or upgrade.
type FacetSpec struct {
	Name    string
	Address common.Address
	ABI     []byte
	Action  model.FacetCutAction
	// Remove lists signatures left out of the cut.
	Remove []string
	// DropERC165 leaves supportsInterface(bytes4) to the loupe facet.
	DropERC165 bool
}

// PlanCut computes the cut entry of one facet.
func PlanCut(spec FacetSpec) (model.FacetCut, error) {
	iface, err := InterfaceFromABI(spec.ABI)
	if err != nil {
		return model.FacetCut{}, &SelectorError{Facet: spec.Name, Err: err}
	}
	sels := ComputeSelectors(iface)
	if len(spec.Remove) > 0 {
		if sels, err = RemoveSelectors(sels, spec.Remove); err != nil {
			var se *SelectorError
			if errors.As(err, &se) {
				se.Facet = spec.Name
			}
			return model.FacetCut{}, err
		}
	}
	if spec.DropERC165 {
		sels = dropSelector(sels, ERC165Selector)
	}
	if len(sels) == 0 {
		return model.FacetCut{}, &SelectorError{Facet: spec.Name, Err: errors.New("no selectors to cut")}
	}

	addr := spec.Address
	switch spec.Action {
	case model.FacetCutAdd, model.FacetCutReplace:
		if addr == (common.Address{}) {
			return model.FacetCut{}, &SelectorError{Facet: spec.Name, Err: fmt.Errorf("%s needs a facet address", spec.Action)}
		}
	case model.FacetCutRemove:
		// The diamond requires the zero address for removals.
		addr = common.Address{}
	default:
		return model.FacetCut{}, &SelectorError{Facet: spec.Name, Err: fmt.Errorf("unknown cut action %d", spec.Action)}
	}

	return model.FacetCut{
		FacetAddress:      addr,
		Action:            uint8(spec.Action),
		FunctionSelectors: Bytes4(sels),
	}, nil
}

// PlanCuts computes the cut entries of a whole deployment. It fails without
// returning any cut when a single facet fails or when two facets would
// register the same selector.
func PlanCuts(specs []FacetSpec) ([]model.FacetCut, error) {
	cuts := make([]model.FacetCut, 0, len(specs))
	owner := map[Selector]string{}
	for _, spec := range specs {
		cut, err := PlanCut(spec)
		if err != nil {
			return nil, err
		}
		if spec.Action != model.FacetCutRemove {
			for _, s := range cut.FunctionSelectors {
				if prev, ok := owner[Selector(s)]; ok {
					return nil, &SelectorError{
						Facet: spec.Name,
						Err:   fmt.Errorf("selector %s already cut by facet %s", Selector(s), prev),
					}
				}
				owner[Selector(s)] = spec.Name
			}
		}
		zap.L().Debug("planned facet cut",
			zap.String("facet", spec.Name),
			zap.Stringer("action", spec.Action),
			zap.Int("selectors", len(cut.FunctionSelectors)))
		cuts = append(cuts, cut)
	}
	return cuts, nil
}

func dropSelector(sels []Selector, target Selector) []Selector {
	out := sels[:0:0]
	for _, s := range sels {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}
