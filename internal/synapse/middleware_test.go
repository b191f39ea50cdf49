package synapse

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/skylane-labs/skylane/pkg/signature"
)

func newTestApp(verify VerifyFunc) *fiber.App {
	app := fiber.New()
	app.Use(ZstdMiddleware())
	app.Use(VerifySignatureMiddleware(verify))
	app.Post(BatchRoute, func(c *fiber.Ctx) error {
		hotkey, _ := c.Locals(HotkeyLocal).(string)
		return c.SendString("hello " + hotkey + ": " + string(c.Body()))
	})
	return app
}

func signedRequest(t *testing.T, provider *signature.Provider, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, BatchRoute, bytes.NewReader(body))
	timestamp := "1700000000"
	hotkey := provider.Address()

	sig, err := provider.Sign(SignedMessage(hotkey, timestamp))
	require.NoError(t, err)

	req.Header.Set(HotkeyHeader, hotkey)
	req.Header.Set(TimestampHeader, timestamp)
	req.Header.Set(SignatureHeader, sig)
	return req
}

func newProvider(t *testing.T) *signature.Provider {
	t.Helper()
	keypair, err := sr25519.GenerateKeypair()
	require.NoError(t, err)
	provider, err := signature.NewProvider(keypair)
	require.NoError(t, err)
	return provider
}

func TestVerifySignatureMiddleware(t *testing.T) {
	provider := newProvider(t)
	app := newTestApp(signature.Verify)

	t.Run("valid signature admitted", func(t *testing.T) {
		resp, err := app.Test(signedRequest(t, provider, []byte("payload")))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, "hello "+provider.Address()+": payload", string(body))
	})

	t.Run("missing headers rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, BatchRoute, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("signature for another hotkey rejected", func(t *testing.T) {
		req := signedRequest(t, provider, nil)
		req.Header.Set(HotkeyHeader, newProvider(t).Address())
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("tampered timestamp rejected", func(t *testing.T) {
		req := signedRequest(t, provider, nil)
		req.Header.Set(TimestampHeader, "1700009999")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("verifier failure rejected", func(t *testing.T) {
		failing := newTestApp(func(message, sig, address string) (bool, error) {
			return false, fmt.Errorf("verifier unavailable")
		})
		resp, err := failing.Test(signedRequest(t, provider, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestZstdMiddleware(t *testing.T) {
	provider := newProvider(t)
	app := newTestApp(signature.Verify)

	t.Run("decompresses request body", func(t *testing.T) {
		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = zw.Write([]byte("compressed payload"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		req := signedRequest(t, provider, buf.Bytes())
		req.Header.Set("Content-Encoding", "zstd")

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "compressed payload")
	})

	t.Run("compresses response on accept-encoding", func(t *testing.T) {
		req := signedRequest(t, provider, []byte("plain"))
		req.Header.Set("Accept-Encoding", "zstd")

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, "zstd", resp.Header.Get("Content-Encoding"))

		zr, err := zstd.NewReader(resp.Body)
		require.NoError(t, err)
		defer zr.Close()
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		require.Contains(t, string(body), "plain")
	})

	t.Run("rejects garbage zstd body", func(t *testing.T) {
		req := signedRequest(t, provider, []byte("not zstd at all"))
		req.Header.Set("Content-Encoding", "zstd")

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
