package gemini

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"context"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/internal/utils"
)

// PredictLongRunning submits a video generation job and returns the provider
// operation handle to poll.
func (c *Client) PredictLongRunning(ctx context.Context, model string, in *PredictLongRunningRequest) (*Operation, error) {
	endpoint := fmt.Sprintf("%s/models/%s:predictLongRunning", c.opts.BaseURL, model)

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, in)
	if err != nil {
		return nil, err
	}

	res, err := c.opts.Transport.Do(req)
	if err != nil {
		return nil, ClassifyTransport("predictLongRunning", model, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var errResp errorResponse
		if derr := utils.DecodeJSON(res.Body, &errResp); derr == nil && errResp.Error != nil {
			return nil, ClassifyAPIError("predictLongRunning", model, errResp.Error)
		}
		return nil, classifyHTTPFailure("predictLongRunning", model, res.StatusCode)
	}

	var op *Operation
	if err := utils.DecodeJSON(res.Body, &op); err != nil {
		return nil, ClassifyTransport("predictLongRunning", model, err)
	}

	if op == nil || op.Name == "" {
		return nil, perrors.New(perrors.ErrCodeUpstreamTransient,
			fmt.Sprintf("provider returned no operation handle for %s", model), nil)
	}

	return op, nil
}

// GetOperation fetches the current state of a long-running operation.
func (c *Client) GetOperation(ctx context.Context, model string, name string) (*Operation, error) {
	endpoint := fmt.Sprintf("%s/%s", c.opts.BaseURL, strings.TrimPrefix(name, "/"))

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.opts.Transport.Do(req)
	if err != nil {
		return nil, ClassifyTransport("getOperation", model, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var errResp errorResponse
		if derr := utils.DecodeJSON(res.Body, &errResp); derr == nil && errResp.Error != nil {
			return nil, ClassifyAPIError("getOperation", model, errResp.Error)
		}
		return nil, classifyHTTPFailure("getOperation", model, res.StatusCode)
	}

	var op *Operation
	if err := utils.DecodeJSON(res.Body, &op); err != nil {
		return nil, ClassifyTransport("getOperation", model, err)
	}

	if op != nil && op.Error != nil {
		return nil, ClassifyAPIError("getOperation", model, op.Error)
	}

	return op, nil
}

// DownloadFile fetches the binary payload behind a result URI. A non-2xx
// status is retryable only when it suggests a transient server failure.
func (c *Client) DownloadFile(ctx context.Context, uri string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, "", err
	}

	req.Header.Set("x-goog-api-key", c.opts.ApiKey)

	res, err := c.opts.Transport.Do(req)
	if err != nil {
		return nil, "", ClassifyTransport("downloadFile", "", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		code := perrors.ErrCodeUpstreamPermanent
		if res.StatusCode >= http.StatusInternalServerError || res.StatusCode == http.StatusTooManyRequests {
			code = perrors.ErrCodeUpstreamTransient
		}
		return nil, "", perrors.New(code,
			fmt.Sprintf("video download failed with HTTP %d", res.StatusCode), nil,
			map[string]interface{}{"status": res.StatusCode})
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", ClassifyTransport("downloadFile", "", err)
	}

	mimeType := res.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	return data, mimeType, nil
}
