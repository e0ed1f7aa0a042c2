package gemini

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/scenecraft/scenecraft/internal/utils"
)

type ClientOptions struct {
	// https://generativelanguage.googleapis.com/v1beta
	BaseURL string
	ApiKey  string
	Headers map[string]string

	Transport *http.Client
}

type Client struct {
	opts *ClientOptions
}

func NewClient(opts *ClientOptions) *Client {
	if opts.Transport == nil {
		opts.Transport = http.DefaultClient
	}

	if opts.BaseURL == "" {
		opts.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &Client{
		opts: opts,
	}
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, payload any) (*http.Request, error) {
	var body *bytes.Buffer
	if payload != nil {
		buf, err := sonic.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(buf)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.opts.ApiKey)
	for k, v := range c.opts.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// GenerateContent issues a single models/{model}:generateContent call.
func (c *Client) GenerateContent(ctx context.Context, model string, in *GenerateContentRequest) (*GenerateContentResponse, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.opts.BaseURL, model)

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, in)
	if err != nil {
		return nil, err
	}

	res, err := c.opts.Transport.Do(req)
	if err != nil {
		return nil, ClassifyTransport("generateContent", model, err)
	}
	defer res.Body.Close()

	var out *GenerateContentResponse
	if err := utils.DecodeJSON(res.Body, &out); err != nil {
		return nil, ClassifyTransport("generateContent", model, err)
	}

	if out != nil && out.Error != nil {
		return nil, ClassifyAPIError("generateContent", model, out.Error)
	}

	if res.StatusCode != http.StatusOK {
		return nil, classifyHTTPFailure("generateContent", model, res.StatusCode)
	}

	return out, nil
}

// StreamGenerateContent issues a streaming call and returns a channel of text
// chunks. The channel is closed at end of stream, on error, or when ctx is
// cancelled; cancelling ctx also closes the provider connection so no further
// chunks are requested.
func (c *Client) StreamGenerateContent(ctx context.Context, model string, in *GenerateContentRequest) (chan string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.opts.BaseURL, model)

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, in)
	if err != nil {
		return nil, err
	}

	res, err := c.opts.Transport.Do(req)
	if err != nil {
		return nil, ClassifyTransport("streamGenerateContent", model, err)
	}

	if res.StatusCode != http.StatusOK {
		defer res.Body.Close()
		var errResp errorResponse
		if err := utils.DecodeJSON(res.Body, &errResp); err == nil && errResp.Error != nil {
			return nil, ClassifyAPIError("streamGenerateContent", model, errResp.Error)
		}
		return nil, classifyHTTPFailure("streamGenerateContent", model, res.StatusCode)
	}

	out := make(chan string)

	go func() {
		defer res.Body.Close()
		defer close(out)

		reader := bufio.NewReader(res.Body)
		for {
			line, err := reader.ReadString('\n')

			trimmed := strings.TrimSpace(line)
			if data := strings.TrimPrefix(trimmed, "data: "); data != trimmed && data != "" {
				chunk := &GenerateContentResponse{}
				if uerr := sonic.Unmarshal([]byte(data), chunk); uerr == nil {
					for _, text := range chunkTexts(chunk) {
						select {
						case out <- text:
						case <-ctx.Done():
							return
						}
					}
				}
			}

			if err != nil {
				return
			}
		}
	}()

	return out, nil
}

func chunkTexts(chunk *GenerateContentResponse) []string {
	var texts []string
	for _, cand := range chunk.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" && !part.Thought {
				texts = append(texts, part.Text)
			}
		}
	}
	return texts
}
