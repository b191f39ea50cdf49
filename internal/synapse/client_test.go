package synapse

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/skylane-labs/skylane/internal/protocol"
)

func testConfig() Config {
	return Config{ClientTimeout: 5 * time.Second, RetryMax: 0, RetryWait: 10 * time.Millisecond}
}

func testBatch() protocol.FlightBatchRequest {
	return protocol.FlightBatchRequest{
		RequestID: "req-1",
		Queries:   []protocol.FlightQuery{{Origin: "JFK", Destination: "LHR", Date: "2026-09-01"}},
	}
}

func testAuth() AuthHeaders {
	return AuthHeaders{Hotkey: "hk-validator", Timestamp: "1700000000", Signature: "0xsig"}
}

func decompressBody(t *testing.T, r io.Reader) []byte {
	t.Helper()
	zr, err := zstd.NewReader(r)
	require.NoError(t, err)
	defer zr.Close()
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return out
}

func TestSendBatch_RoundTrip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, BatchRoute, r.URL.Path)
		require.Equal(t, "hk-validator", r.Header.Get(HotkeyHeader))
		require.Equal(t, "1700000000", r.Header.Get(TimestampHeader))
		require.Equal(t, "0xsig", r.Header.Get(SignatureHeader))
		require.Equal(t, "zstd", r.Header.Get("Content-Encoding"))

		var req protocol.FlightBatchRequest
		require.NoError(t, sonic.Unmarshal(decompressBody(t, r.Body), &req))
		require.Equal(t, "req-1", req.RequestID)
		require.Len(t, req.Queries, 1)

		resp := protocol.FlightBatchResponse{
			RequestID: req.RequestID,
			Responses: [][]protocol.FlightOffer{{{Price: 420, DurationHours: 7.5, Carrier: "BA"}}},
		}
		b, err := sonic.Marshal(resp)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	}))
	defer ts.Close()

	resp, err := NewClient(testConfig()).SendBatch(context.Background(), ts.URL, testBatch(), testAuth())
	require.NoError(t, err)
	require.Equal(t, "req-1", resp.RequestID)
	require.Len(t, resp.Responses, 1)
	require.Equal(t, 420.0, resp.Responses[0][0].Price)
}

func TestSendBatch_CompressedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := protocol.FlightBatchResponse{RequestID: "req-1"}
		b, err := sonic.Marshal(resp)
		require.NoError(t, err)

		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = zw.Write(b)
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		w.Header().Set("Content-Encoding", "zstd")
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	resp, err := NewClient(testConfig()).SendBatch(context.Background(), ts.URL, testBatch(), testAuth())
	require.NoError(t, err)
	require.Equal(t, "req-1", resp.RequestID)
}

func TestSendBatch_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"Non-validator hotkey"}`))
	}))
	defer ts.Close()

	_, err := NewClient(testConfig()).SendBatch(context.Background(), ts.URL, testBatch(), testAuth())
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}

func TestSendBatch_UnreachablePeer(t *testing.T) {
	_, err := NewClient(testConfig()).SendBatch(context.Background(), "http://127.0.0.1:1", testBatch(), testAuth())
	require.Error(t, err)
}
