// Package storage provides the off-chain collaborators used by the Event
// Ticketing SDK: gateway URL rewriting, remote document fetching and IPFS
// content management.
//
// # Gateway Rewriting
//
// Contracts return content locators such as "ipfs://bafy.../metadata.json".
// Gateway replaces the literal "ipfs://" prefix with a configured HTTP base:
//
//	gw := storage.Gateway{Base: "https://nftstorage.link/ipfs/"}
//	gw.Rewrite("ipfs://QmHash")          // https://nftstorage.link/ipfs/QmHash
//	gw.Rewrite("https://example.com/x")  // unchanged
//
// The rewrite is a pure prefix substitution and never fails.
//
// # Document Fetcher
//
// Fetcher is the request/response boundary used for metadata retrieval and
// backend REST calls. HTTPFetcher implements it over net/http:
//
//	f := storage.NewHTTPFetcher(
//		storage.WithTimeout(10*time.Second),
//		storage.WithRateLimit(5, 1), // 5 req/s
//	)
//	resp, err := f.Get(ctx, url)
//	if err != nil {
//		return err // transport failure
//	}
//	if !resp.OK() {
//		// the caller decides what a non-2xx status means
//	}
//
// # IPFS
//
// Client talks to a Kubo node over its RPC API:
//
//	client := storage.NewStorage("http://127.0.0.1:5001", "https://gateway.lighthouse.storage/ipfs/")
//	uri, err := client.UploadJSON(ctx, metadata) // ipfs://<cid>
//	data, err := client.ReadFile(ctx, uri)
//	err = client.Delete(ctx, uri)                // unpins <cid>
//
// Uploads are pinned. ReadFile verifies content addressed by raw CIDs.
// Filecoin URIs (filecoin://<cid>) are read through the Lighthouse gateway.
//
// # Thread Safety
//
// Gateway and HTTPFetcher are safe for concurrent use. Client is safe for
// concurrent use once constructed with NewStorage.
package storage
