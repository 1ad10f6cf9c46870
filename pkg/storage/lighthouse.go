package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// GetLighthouseFileCtx fetches a blob from a Lighthouse HTTP gateway.
//
// It performs a GET to {lighthouseEndpoint}{cID} and returns the response
// body. A positive timeout bounds the request in addition to ctx. Non-2xx
// responses are returned as errors.
func GetLighthouseFileCtx(ctx context.Context, lighthouseEndpoint, cID string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	zap.L().Debug("Getting lighthouse file", zap.String("cid", cID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lighthouseEndpoint+cID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("lighthouse %s: unexpected status %d", cID, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
