package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/protocol"
)

// serveIngress exposes the caller-facing search endpoint: a SearchIntent in,
// the top ranked offers out. This is the only call the core fulfills
// end-to-end.
func (v *Validator) serveIngress(ctx context.Context) error {
	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})
	app.Use(recover.New())

	app.Post("/search", func(c *fiber.Ctx) error {
		var intent protocol.SearchIntent
		if err := c.BodyParser(&intent); err != nil {
			log.Warn().Err(err).Msg("failed to parse search intent")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid search intent"})
		}

		offers := v.HandleIntent(c.Context(), intent)
		return c.JSON(offers)
	})

	go func() {
		addr := fmt.Sprintf(":%d", v.ValidatorConfig.IngressPort)
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("ingress listen failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
