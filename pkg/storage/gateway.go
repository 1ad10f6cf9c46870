package storage

import "strings"

// Gateway rewrites content locators into fetchable HTTP(S) URLs.
type Gateway struct {
	// Base replaces the ipfs:// prefix, e.g. "https://nftstorage.link/ipfs/".
	Base string
}

// Rewrite replaces a leading "ipfs://" with g.Base. Any other input is
// returned unchanged; the transform never fails.
func (g Gateway) Rewrite(uri string) string {
	return MakeGatewayURL(uri, g.Base)
}

// MakeGatewayURL is the function form of Gateway.Rewrite.
func MakeGatewayURL(uri, base string) string {
	if !strings.HasPrefix(uri, IpfsPrefix) {
		return uri
	}
	return base + uri[len(IpfsPrefix):]
}
