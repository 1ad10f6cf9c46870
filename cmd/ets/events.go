package main

import (
	"math/big"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Read event metadata",
}

var eventsFetchCmd = &cobra.Command{
	Use:   "fetch ID...",
	Short: "Resolve the metadata of the given events",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]*big.Int, len(args))
		for i, a := range args {
			id, err := parseID(a)
			if err != nil {
				return err
			}
			ids[i] = id
		}

		ets, err := openSDK()
		if err != nil {
			return err
		}
		defer ets.Close()

		records, err := ets.FetchEvents(cmd.Context(), ids)
		if err != nil {
			return err
		}
		return printJSON(cmd, records)
	},
}

var eventsAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Resolve the metadata of every event",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ets, err := openSDK()
		if err != nil {
			return err
		}
		defer ets.Close()

		ids, err := ets.FetchAllEventIds(cmd.Context())
		if err != nil {
			return err
		}
		records, err := ets.FetchEvents(cmd.Context(), ids)
		if err != nil {
			return err
		}
		return printJSON(cmd, records)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories EVENT_ID",
	Short: "Resolve the ticket categories of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ets, err := openSDK()
		if err != nil {
			return err
		}
		defer ets.Close()

		records, err := ets.FetchCategoriesByEventId(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, records)
	},
}

func init() {
	eventsCmd.AddCommand(eventsFetchCmd)
	eventsCmd.AddCommand(eventsAllCmd)
}
