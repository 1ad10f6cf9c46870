package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

// ipfsNode is the Kubo HTTP API implementation of IPFSFetcher and IPFSWriter.
type ipfsNode struct {
	api *rpc.HttpApi
}

func newIPFSNode(api *rpc.HttpApi) *ipfsNode {
	return &ipfsNode{api: api}
}

// Fetch retrieves content by CID via `ipfs cat`. Content addressed by a raw
// CID is verified by recomputing its multihash; other codecs hash the UnixFS
// DAG rather than the bytes and are returned as-is.
func (f *ipfsNode) Fetch(ctx context.Context, hash string) (content []byte, err error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
	}

	hash = formatHash(hash)

	zap.L().Debug("Hash Used to retrieve from IPFS", zap.String("hash", hash))

	if f.api == nil {
		return nil, ErrNotConfigured
	}

	cID, err := cid.Parse(hash)
	if err != nil {
		zap.L().Error("error parsing the ipfs hash", zap.String("hash", hash), zap.Error(err))
		return nil, fmt.Errorf("invalid ipfs hash %q: %w", hash, err)
	}

	resp, err := f.api.Request("cat", cID.String()).Send(ctx)
	if err != nil {
		zap.L().Error("error executing the cat command in ipfs", zap.String("hash", hash), zap.Error(err))
		return nil, err
	}
	defer func(resp *rpc.Response) {
		if cerr := resp.Close(); cerr != nil {
			zap.L().Error("error closing response in ipfs", zap.String("hash", hash), zap.Error(cerr))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("ipfs cat returned error", zap.String("hash", hash), zap.Error(resp.Error))
		return nil, resp.Error
	}
	content, err = io.ReadAll(resp.Output)
	if err != nil {
		zap.L().Error("error reading ipfs content", zap.String("hash", hash), zap.Error(err))
		return nil, err
	}

	if cID.Prefix().Codec == cid.Raw {
		got, err := cID.Prefix().Sum(content)
		if err != nil {
			return nil, fmt.Errorf("hash ipfs content: %w", err)
		}
		if !got.Equals(cID) {
			zap.L().Error("IPFS hash verification failed",
				zap.String("expectedHash", hash),
				zap.String("hashFromIPFSContent", got.String()))
			return nil, fmt.Errorf("ipfs content for %s hashes to %s", cID, got)
		}
	}

	return content, nil
}

// Upload adds data to IPFS (pinned) and returns its URI (ipfs://<hash>).
func (f *ipfsNode) Upload(ctx context.Context, data []byte) (string, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
	}

	if f.api == nil {
		return "", ErrNotConfigured
	}

	var addResp struct {
		Hash string `json:"Hash"`
	}
	err := f.api.Request("add").
		Option("pin", true).
		Option("cid-version", 1).
		FileBody(bytes.NewReader(data)).
		Exec(ctx, &addResp)
	if err != nil {
		zap.L().Error("error uploading to ipfs", zap.Error(err))
		return "", err
	}
	if addResp.Hash == "" {
		return "", fmt.Errorf("ipfs add returned no hash")
	}

	zap.L().Debug("Successfully uploaded to IPFS", zap.String("hash", addResp.Hash))
	return IpfsPrefix + addResp.Hash, nil
}

// Unpin removes the recursive pin of c so the node may garbage-collect it.
func (f *ipfsNode) Unpin(ctx context.Context, c cid.Cid) error {
	if f.api == nil {
		return ErrNotConfigured
	}
	return f.api.Request("pin/rm", c.String()).Exec(ctx, nil)
}

// Upload stores raw bytes (for example an event image) and returns the URI.
func (c *Client) Upload(ctx context.Context, data []byte) (string, error) {
	if c.ipfsWriter == nil {
		c.ipfsWriter = newIPFSNode(c.HttpApi)
	}
	return c.ipfsWriter.Upload(ctx, data)
}

// UploadJSON serializes data to JSON and uploads it to IPFS.
// Returns the IPFS URI (ipfs://<hash>) on success.
func (c *Client) UploadJSON(ctx context.Context, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		zap.L().Error("error marshaling data to json", zap.Error(err))
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return c.Upload(ctx, jsonData)
}

// NewIPFSClient constructs a Kubo HTTP API client pointed at url.
func NewIPFSClient(url string) (*rpc.HttpApi, error) {
	httpClient := http.Client{
		Timeout: 30 * time.Second,
	}
	client, err := rpc.NewURLApiWithClient(url, &httpClient)
	if err != nil {
		return nil, fmt.Errorf("connect to ipfs %s: %w", url, err)
	}
	return client, nil
}
