package main

import (
	"fmt"
	"os"

	"github.com/shamank/ets-sdk-go/pkg/diamond"
	"github.com/spf13/cobra"
)

var (
	selectorsABI    string
	selectorsRemove []string
	selectorsERC165 bool
	selectorsJSON   bool
)

var selectorsCmd = &cobra.Command{
	Use:   "selectors --abi FILE",
	Short: "Compute the diamond function selectors of a facet ABI",
	Long: `Computes the 4-byte selector of every callable function of a facet ABI,
in ABI order. init(bytes) is never listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(selectorsABI)
		if err != nil {
			return err
		}
		lines, err := facetSelectors(raw, selectorsRemove, selectorsERC165)
		if err != nil {
			return err
		}
		if selectorsJSON {
			return printJSON(cmd, lines)
		}
		for _, l := range lines {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", l.Selector, l.Signature)
		}
		return nil
	},
}

type selectorLine struct {
	Selector  string `json:"selector"`
	Signature string `json:"signature"`
}

func facetSelectors(abiJSON []byte, remove []string, keepERC165 bool) ([]selectorLine, error) {
	iface, err := diamond.InterfaceFromABI(abiJSON)
	if err != nil {
		return nil, err
	}
	names := make(map[diamond.Selector]string, len(iface))
	for _, fn := range iface {
		names[diamond.SelectorOf(fn.Signature)] = fn.Signature
	}

	sels := diamond.ComputeSelectors(iface)
	if !keepERC165 {
		remove = append(remove[:len(remove):len(remove)], "supportsInterface(bytes4)")
	}
	if len(remove) > 0 {
		if sels, err = diamond.RemoveSelectors(sels, remove); err != nil {
			return nil, err
		}
	}

	out := make([]selectorLine, len(sels))
	for i, s := range sels {
		out[i] = selectorLine{Selector: s.String(), Signature: names[s]}
	}
	return out, nil
}

func init() {
	selectorsCmd.Flags().StringVar(&selectorsABI, "abi", "", "facet ABI JSON file")
	selectorsCmd.Flags().StringArrayVar(&selectorsRemove, "remove", nil, "signature to leave out (repeatable)")
	selectorsCmd.Flags().BoolVar(&selectorsERC165, "erc165", true, "keep supportsInterface(bytes4)")
	selectorsCmd.Flags().BoolVar(&selectorsJSON, "json", false, "print a JSON array")
	_ = selectorsCmd.MarkFlagRequired("abi")
}
