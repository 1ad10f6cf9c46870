// Package metadata resolves on-chain identifiers to the JSON documents their
// token URIs point to.
//
// Resolution is a contract read followed by one gateway GET:
//
//	r := metadata.NewResolver(storage.NewHTTPFetcher(), storage.Gateway{Base: cfg.GatewayURL})
//	rec, err := r.ResolveOne(ctx, big.NewInt(7), evm.Events)
//	// rec["eventId"] == 7, rec["cid"] == "ipfs://..."
//
// A rejected contract read yields *ResolutionError carrying the contract's
// message unchanged; a failed retrieval yields *FetchError. Batches run
// sequentially in input order and fail fast unless the resolver was built
// WithPolicy(ContinueOnError).
//
// The resolver keeps no cache. Callers that want one can wrap ResolveOne.
package metadata
