package synapse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/protocol"
)

// Client posts flight batches to miner axons. Request bodies are zstd
// compressed; responses are decompressed when the miner answers in kind.
type Client struct {
	httpClient *resty.Client
	cfg        Config
}

func NewClient(cfg Config) *Client {
	cli := resty.New()

	cli.SetRetryCount(cfg.RetryMax)
	cli.SetTimeout(cfg.ClientTimeout)
	cli.SetRetryWaitTime(cfg.RetryWait)
	cli.SetRetryMaxWaitTime(cfg.RetryWait * 2)
	return &Client{httpClient: cli, cfg: cfg}
}

// SendBatch dispatches one batch to a single miner and decodes its response.
// Any failure is returned to the caller; the dispatcher treats it as
// "no response from this peer".
func (c *Client) SendBatch(ctx context.Context, baseURL string, batch protocol.FlightBatchRequest, auth AuthHeaders) (protocol.FlightBatchResponse, error) {
	var resp protocol.FlightBatchResponse

	b, err := sonic.Marshal(batch)
	if err != nil {
		return resp, fmt.Errorf("marshal batch: %w", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return resp, fmt.Errorf("zstd: failed to create writer: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		_ = w.Close()
		return resp, fmt.Errorf("zstd: failed to compress batch: %w", err)
	}
	if err := w.Close(); err != nil {
		return resp, fmt.Errorf("zstd: failed to finalize compression: %w", err)
	}

	req := c.httpClient.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Content-Encoding", "zstd").
		SetHeader("Accept-Encoding", "zstd").
		SetHeader(HotkeyHeader, auth.Hotkey).
		SetHeader(TimestampHeader, auth.Timestamp).
		SetHeader(SignatureHeader, auth.Signature).
		SetBody(buf.Bytes())

	restyResp, err := req.Post(strings.TrimSuffix(baseURL, "/") + BatchRoute)
	if err != nil {
		log.Warn().Err(err).Str("url", baseURL).Msg("send batch failed")
		return resp, err
	}

	if restyResp.StatusCode() >= 400 {
		return resp, fmt.Errorf("bad status %d: %s", restyResp.StatusCode(), string(restyResp.Body()))
	}

	data := restyResp.Body()
	if strings.Contains(strings.ToLower(restyResp.Header().Get("Content-Encoding")), "zstd") {
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return resp, fmt.Errorf("zstd: failed to create reader: %w", err)
		}
		defer r.Close()

		out, err := io.ReadAll(r)
		if err != nil {
			return resp, fmt.Errorf("zstd: failed to decompress response: %w", err)
		}
		data = out
	}

	if err := sonic.Unmarshal(data, &resp); err != nil {
		return resp, fmt.Errorf("unmarshal batch response: %w", err)
	}
	return resp, nil
}
