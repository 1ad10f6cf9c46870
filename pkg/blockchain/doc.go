// Package blockchain provides Go bindings and helpers for the Event Ticketing
// System contracts on EVM chains. Both the events and the tickets contracts
// are EIP-2535 diamonds; this package embeds the ABIs of their facets and
// binds them to a single chain connection.
//
// # Facets
//
// Facet is the untyped binding of one ABI to one diamond address. It offers:
//
//   - Call: constant method invocation returning unpacked outputs.
//   - Populate: ABI packing of a state-changing call into an UnsignedTx. No
//     network access, no signing.
//   - SubscribeEvent: a log subscription that delivers DecodedLog values with
//     arguments in ABI declaration order.
//
// Typed wrappers build on it:
//
//	EventFacet             events diamond: events, team, categories
//	TicketControllerFacet  events diamond: buy, book, clip, refund
//	TicketFacet            tickets diamond: ERC-721 tickets
//	DiamondFacet           loupe + cut of a diamond
//
// # Client Initialization
//
//	evm, err := blockchain.InitEvm(ctx, "wss://api.avax-test.network/ext/bc/C/ws",
//		common.HexToAddress(cfg.EventsAddr), common.HexToAddress(cfg.TicketsAddr))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer evm.Close()
//
// Log subscriptions need a websocket (or IPC) endpoint; plain HTTP endpoints
// support reads and transactions only.
//
// # Transactions
//
// Every state-changing SDK operation returns an *UnsignedTx. Send it with any
// wallet, or sign and submit it here:
//
//	tx, err := evm.Events.RemoveEvent(big.NewInt(7))
//	signed, err := evm.SendTransaction(ctx, tx, privateKey)
//	receipt, err := evm.WaitForTransaction(ctx, signed.Hash(), 30*time.Second)
//
// SendTransaction builds an EIP-1559 transaction (fee cap = tip + 2*base fee)
// and estimates gas first, so reverts surface before anything is broadcast.
// RevertReason extracts the Solidity reason string from such errors.
//
// # Utilities
//
//   - RoleHash / ParseRole: role identifiers (keccak256 of the role name)
//   - ToWei / FromWei: native token amounts with 18 decimals
//   - ParsePrivateKeyECDSA, GetAddressFromPrivateKeyECDSA, GetTransactOpts
package blockchain
