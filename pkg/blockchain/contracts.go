package blockchain

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Names of the embedded facet ABIs.
const (
	EventFacetName                 = "EventFacet"
	EventTicketControllerFacetName = "EventTicketControllerFacet"
	TicketFacetName                = "TicketFacet"
	DiamondLoupeFacetName          = "DiamondLoupeFacet"
	DiamondCutFacetName            = "DiamondCutFacet"
)

//go:embed abi/*.json
var abiFS embed.FS

var (
	parsedMu sync.Mutex
	parsed   = map[string]abi.ABI{}
)

// ABIJSON returns the raw JSON ABI of the named facet.
func ABIJSON(name string) ([]byte, error) {
	raw, err := abiFS.ReadFile("abi/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown facet abi %q", name)
	}
	return raw, nil
}

// ParsedABI returns the parsed ABI of the named facet. Results are memoized.
func ParsedABI(name string) (abi.ABI, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()
	if a, ok := parsed[name]; ok {
		return a, nil
	}
	raw, err := ABIJSON(name)
	if err != nil {
		return abi.ABI{}, err
	}
	a, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse %s abi: %w", name, err)
	}
	parsed[name] = a
	return a, nil
}

func mustABI(name string) abi.ABI {
	a, err := ParsedABI(name)
	if err != nil {
		panic(err)
	}
	return a
}
