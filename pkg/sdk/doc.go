// Package sdk provides the high-level entry point for the Event Ticketing
// System contracts.
//
// The SDK covers contract calls on the events and tickets diamonds, metadata
// documents stored on IPFS and contract log subscriptions.
//
// # Quick Start
//
//	import (
//		"github.com/shamank/ets-sdk-go/pkg/config"
//		"github.com/shamank/ets-sdk-go/pkg/sdk"
//	)
//
//	func main() {
//		cfg := &config.Config{
//			RPCAddr:    "wss://api.avax-test.network/ext/bc/C/ws",
//			PrivateKey: "YOUR_PRIVATE_KEY",
//			Network:    config.Fuji,
//		}
//
//		ets, err := sdk.NewSDK(cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer ets.Close()
//
//		ids, err := ets.FetchAllEventIds(ctx)
//		if err != nil {
//			log.Fatal(err)
//		}
//		events, err := ets.FetchEvents(ctx, ids)
//		...
//	}
//
// # Transactions
//
// State-changing methods never send anything. They upload metadata where the
// call needs a document locator, then return a populated *blockchain.UnsignedTx
// that can be signed by any wallet, or by the SDK itself:
//
//	tx, err := ets.CreateEvent(ctx, doc, image, params)
//	if err != nil {
//		return err
//	}
//	receipt, err := ets.SendAndWait(ctx, tx)
//
// Event and category documents are validated against the bundled JSON schemas
// before upload.
//
// # Metadata
//
// FetchEvents, FetchOwnedEvents and FetchCategoriesByEventId resolve documents
// through the configured gateway. By default a batch stops at the first failure;
// set Metadata.BatchPolicy to config.ContinueOnError to collect every success
// together with a *metadata.BatchError.
//
// # Listeners
//
// Listeners returns the registry of contract log subscriptions:
//
//	errs := make(chan error, 16)
//	ets, _ := sdk.NewSDK(cfg, sdk.WithListenerErrors(errs))
//	err := ets.Listeners().ListenForBoughtTicket(ctx, func(ctx context.Context, rec model.TicketBought) error {
//		return store.SaveSale(ctx, rec.TicketContractID, rec.Account)
//	})
//
// Listening requires a WebSocket RPC endpoint.
//
// # Resource Management
//
// Close stops every listener and releases the RPC connection.
package sdk
