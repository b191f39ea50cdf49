package synapse

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// HotkeyLocal is the fiber locals key under which the verified caller
// hotkey is stored for downstream handlers.
const HotkeyLocal = "hotkey"

// VerifyFunc validates a signature over a message for an SS58 address.
type VerifyFunc func(message, signature, address string) (bool, error)

// ZstdMiddleware decompresses zstd request bodies and compresses responses
// when the client accepts zstd.
func ZstdMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.Contains(strings.ToLower(c.Get("Content-Encoding")), "zstd") {
			r, err := zstd.NewReader(bytes.NewReader(c.Body()))
			if err != nil {
				log.Error().Err(err).Msg("zstd: failed to create reader for request body")
				return c.Status(fiber.StatusBadRequest).SendString("invalid zstd request body")
			}
			defer r.Close()

			out, err := io.ReadAll(r)
			if err != nil {
				log.Error().Err(err).Msg("zstd: failed to decompress request body")
				return c.Status(fiber.StatusBadRequest).SendString("invalid zstd request body")
			}

			c.Request().SetBody(out)
			c.Request().Header.Set("Content-Length", strconv.Itoa(len(out)))
			c.Request().Header.Del("Content-Encoding")
		}

		if err := c.Next(); err != nil {
			return err
		}

		if strings.Contains(strings.ToLower(c.Get("Accept-Encoding")), "zstd") {
			respBody := c.Response().Body()
			var buf bytes.Buffer
			w, err := zstd.NewWriter(&buf)
			if err != nil {
				log.Error().Err(err).Msg("zstd: failed to create writer for response body")
				return nil
			}
			if _, err := w.Write(respBody); err != nil {
				_ = w.Close()
				log.Error().Err(err).Msg("zstd: failed to compress response body")
				return nil
			}
			_ = w.Close()

			comp := buf.Bytes()
			c.Response().SetBody(comp)
			c.Set("Content-Encoding", "zstd")
			c.Set("Vary", "Accept-Encoding")
			c.Set("Content-Length", strconv.Itoa(len(comp)))
		}

		return nil
	}
}

// VerifySignatureMiddleware checks the x-signature/x-hotkey/x-timestamp
// headers on every request and stores the verified hotkey in locals. The
// admission policy downstream decides whether the hotkey is welcome; this
// layer only proves the caller owns it.
func VerifySignatureMiddleware(verify VerifyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sig := c.Get(SignatureHeader)
		hotkey := c.Get(HotkeyHeader)
		timestamp := c.Get(TimestampHeader) // in seconds, not milliseconds
		if sig == "" || hotkey == "" {
			log.Warn().Bool("missing_sig", sig == "").Bool("missing_hotkey", hotkey == "").Msg("missing signature or hotkey header")
			return c.Status(fiber.StatusUnauthorized).SendString("missing signature or hotkey header")
		}

		valid, err := verify(SignedMessage(hotkey, timestamp), sig, hotkey)
		if err != nil {
			log.Error().Err(err).Msg("signature verification error")
			return c.Status(fiber.StatusUnauthorized).SendString("signature verification error")
		}
		if !valid {
			log.Warn().Str("hotkey", hotkey).Msg("invalid signature")
			return c.Status(fiber.StatusUnauthorized).SendString("invalid signature")
		}

		c.Locals(HotkeyLocal, hotkey)
		return c.Next()
	}
}
