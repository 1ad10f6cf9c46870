package model

import "github.com/ethereum/go-ethereum/common"

// FacetCutAction is the diamond cut operation for one facet.
type FacetCutAction uint8

const (
	FacetCutAdd FacetCutAction = iota
	FacetCutReplace
	FacetCutRemove
)

func (a FacetCutAction) String() string {
	switch a {
	case FacetCutAdd:
		return "add"
	case FacetCutReplace:
		return "replace"
	case FacetCutRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// FacetCut is one entry of a diamondCut call.
type FacetCut struct {
	FacetAddress      common.Address `abi:"facetAddress"`
	Action            uint8          `abi:"action"`
	FunctionSelectors [][4]byte      `abi:"functionSelectors"`
}

// Facet is one entry returned by the diamond loupe.
type Facet struct {
	FacetAddress      common.Address `abi:"facetAddress"`
	FunctionSelectors [][4]byte      `abi:"functionSelectors"`
}
