// Package diamond computes the function selectors of EIP-2535 facets and
// plans diamondCut calls from them.
//
// A facet interface is an ordered list of signatures, each possibly
// excluded. ComputeSelectors hashes the non-excluded ones and keeps their
// order; InterfaceFromABI builds the list from a JSON ABI and excludes
// init(bytes):
//
//	iface, err := diamond.InterfaceFromABI(abiJSON)
//	sels := diamond.ComputeSelectors(iface)
//	sels, err = diamond.RemoveSelectors(sels, []string{"supportsInterface(bytes4)"})
//
// PlanCuts turns a set of FacetSpec values into the FacetCut entries
// expected by blockchain.DiamondFacet.PopulateDiamondCut. It is
// all-or-nothing: any *SelectorError aborts the plan.
package diamond
