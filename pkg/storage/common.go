// Package storage provides the off-chain collaborators of the SDK: the gateway
// URL rewriter, an HTTP document fetcher used for metadata and backend REST
// calls, and a Kubo (IPFS) client used to upload, read and unpin metadata.
// Filecoin content is read through a Lighthouse gateway.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

const (
	// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
	IpfsPrefix = "ipfs://"
	// FilecoinPrefix is the URI scheme prefix recognized for Filecoin/Lighthouse content.
	FilecoinPrefix = "filecoin://"
)

// ErrNotConfigured is returned when the IPFS client could not be created.
var ErrNotConfigured = errors.New("ipfs client not configured")

// Storage is the interface of backends able to store, fetch and drop metadata.
type Storage interface {
	ReadFile(ctx context.Context, uri string) ([]byte, error)
	Upload(ctx context.Context, data []byte) (string, error)
	UploadJSON(ctx context.Context, data any) (string, error)
	Delete(ctx context.Context, uri string) error
}

// LighthouseFetcher fetches content from a Lighthouse gateway.
type LighthouseFetcher interface {
	Fetch(ctx context.Context, endpoint, cid string) ([]byte, error)
}

// IPFSFetcher fetches content addressed by CID from IPFS.
type IPFSFetcher interface {
	Fetch(ctx context.Context, hash string) ([]byte, error)
}

// IPFSWriter adds and unpins content on an IPFS node.
type IPFSWriter interface {
	Upload(ctx context.Context, data []byte) (string, error)
	Unpin(ctx context.Context, c cid.Cid) error
}

// Client aggregates the configured storage backends.
type Client struct {
	// HttpApi is a connected Kubo HTTP API client.
	*rpc.HttpApi
	// LighthouseURL is the base URL of the Lighthouse HTTP gateway.
	LighthouseURL string

	lighthouseFetcher LighthouseFetcher
	ipfsFetcher       IPFSFetcher
	ipfsWriter        IPFSWriter
}

var _ Storage = (*Client)(nil)

// NewStorage constructs a Client using the provided IPFS API endpoint and
// Lighthouse gateway URL. If the IPFS client fails to initialize, the error is
// logged and IPFS operations return ErrNotConfigured.
func NewStorage(ipfsURL, lighthouseURL string) *Client {
	var err error
	s := new(Client)
	s.HttpApi, err = NewIPFSClient(ipfsURL)
	s.LighthouseURL = lighthouseURL
	s.lighthouseFetcher = defaultLighthouseFetcher{}
	node := newIPFSNode(s.HttpApi)
	s.ipfsFetcher = node
	s.ipfsWriter = node
	if err != nil {
		zap.L().Error("failed to create ipfs client", zap.String("url", ipfsURL), zap.Error(err))
	}
	return s
}

// ReadFile fetches content identified by the given URI. If the input has the
// "filecoin://" prefix, it is retrieved via the Lighthouse gateway; otherwise
// the content is fetched from IPFS using the Kubo client.
func (s *Client) ReadFile(ctx context.Context, uri string) (rawFile []byte, err error) {
	if s.lighthouseFetcher == nil {
		s.lighthouseFetcher = defaultLighthouseFetcher{}
	}
	if s.ipfsFetcher == nil {
		s.ipfsFetcher = newIPFSNode(s.HttpApi)
	}

	if strings.HasPrefix(uri, FilecoinPrefix) {
		rawFile, err = s.lighthouseFetcher.Fetch(ctx, s.LighthouseURL, formatHash(uri))
	} else {
		rawFile, err = s.ipfsFetcher.Fetch(ctx, formatHash(uri))
	}
	return rawFile, err
}

// Delete unpins the content a URI points to. The CID is the first path
// segment after the scheme, so both ipfs://<cid> and ipfs://<cid>/metadata.json
// are accepted.
func (s *Client) Delete(ctx context.Context, uri string) error {
	c, err := ExtractCID(uri)
	if err != nil {
		return err
	}
	if s.ipfsWriter == nil {
		s.ipfsWriter = newIPFSNode(s.HttpApi)
	}
	if err := s.ipfsWriter.Unpin(ctx, c); err != nil {
		return fmt.Errorf("unpin %s: %w", c, err)
	}
	zap.L().Debug("unpinned ipfs content", zap.String("cid", c.String()))
	return nil
}

// ExtractCID parses the CID referenced by an ipfs://, filecoin:// or gateway URI.
func ExtractCID(uri string) (cid.Cid, error) {
	rest := uri
	switch {
	case strings.HasPrefix(rest, IpfsPrefix):
		rest = strings.TrimPrefix(rest, IpfsPrefix)
	case strings.HasPrefix(rest, FilecoinPrefix):
		rest = strings.TrimPrefix(rest, FilecoinPrefix)
	default:
		if i := strings.Index(rest, "/ipfs/"); i >= 0 {
			rest = rest[i+len("/ipfs/"):]
		}
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	c, err := cid.Parse(rest)
	if err != nil {
		return cid.Undef, fmt.Errorf("invalid content id in %q: %w", uri, err)
	}
	return c, nil
}

// defaultLighthouseFetcher is the production implementation of LighthouseFetcher.
type defaultLighthouseFetcher struct{}

func (defaultLighthouseFetcher) Fetch(ctx context.Context, endpoint, cid string) ([]byte, error) {
	return GetLighthouseFileCtx(ctx, endpoint, cid, 0)
}

// formatHash removes known URI scheme prefixes, drops everything after the
// first path separator and strips any non-alphanumeric characters (except '=')
// to produce a clean CID string suitable for the underlying backends.
func formatHash(hash string) string {
	hash = strings.Replace(hash, IpfsPrefix, "", -1)
	hash = strings.Replace(hash, FilecoinPrefix, "", -1)
	if i := strings.IndexByte(hash, '/'); i >= 0 {
		hash = hash[:i]
	}
	hash = removeSpecialCharacters(hash)
	return hash
}

var specialCharacters = regexp.MustCompile("[^a-zA-Z0-9=]")

// removeSpecialCharacters strips all characters except ASCII letters, digits,
// and '=' from pString.
func removeSpecialCharacters(pString string) string {
	return specialCharacters.ReplaceAllString(pString, "")
}
