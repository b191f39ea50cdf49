// Package miner implements the responder role: admission policy, per-query
// fulfillment against the pricing backend, and the axon HTTP server.
package miner

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/config"
	"github.com/skylane-labs/skylane/internal/kami"
	"github.com/skylane-labs/skylane/internal/pricing"
	"github.com/skylane-labs/skylane/internal/protocol"
	"github.com/skylane-labs/skylane/internal/registry"
	"github.com/skylane-labs/skylane/internal/synapse"
	chainutils "github.com/skylane-labs/skylane/internal/utils/chainutils"
	"github.com/skylane-labs/skylane/pkg/signature"
)

type Miner struct {
	Kami     kami.KamiInterface
	Registry registry.Registry
	Source   pricing.Source

	cfg       *config.MinerEnvConfig
	intervals *config.IntervalConfig
	metagraph *registry.MetagraphRegistry
	app       *fiber.App

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMiner(cfg *config.MinerEnvConfig, k kami.KamiInterface, source pricing.Source) *Miner {
	metaReg := registry.NewMetagraphRegistry()
	ctx, cancel := context.WithCancel(context.Background())

	m := &Miner{
		Kami:     k,
		Registry: metaReg,
		Source:   source,

		cfg:       cfg,
		intervals: config.NewIntervalConfig(cfg.Environment),
		metagraph: metaReg,

		ctx:    ctx,
		cancel: cancel,
	}
	m.app = m.newServer()
	return m
}

func (m *Miner) newServer() *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
		BodyLimit:   m.cfg.BodySizeLimit,
	})

	app.Use(recover.New())
	app.Use(synapse.ZstdMiddleware())
	app.Use(synapse.VerifySignatureMiddleware(signature.Verify))
	app.Post(synapse.BatchRoute, m.handleBatch)
	return app
}

func (m *Miner) handleBatch(c *fiber.Ctx) error {
	hotkey, _ := c.Locals(synapse.HotkeyLocal).(string)

	decision := m.Admit(hotkey)
	if decision.Rejected {
		log.Warn().Str("hotkey", hotkey).Str("reason", decision.Reason).Msg("batch request rejected")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": decision.Reason})
	}

	var req protocol.FlightBatchRequest
	if err := c.BodyParser(&req); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal batch request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid batch request"})
	}

	log.Info().Str("hotkey", hotkey).Str("requestId", req.RequestID).Int("queries", len(req.Queries)).
		Msg("fulfilling batch")

	c.Set(synapse.PriorityHeader, strconv.FormatFloat(m.Priority(hotkey), 'f', -1, 64))
	return c.JSON(m.HandleBatch(c.Context(), req))
}

// Run registers the axon on-chain, starts the server, and keeps the local
// metagraph snapshot fresh.
func (m *Miner) Run() {
	if err := m.serveAxon(); err != nil {
		log.Error().Err(err).Msg("failed to serve axon on chain, continuing unserved")
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		t := time.NewTicker(m.intervals.MetagraphInterval)
		defer t.Stop()
		for {
			select {
			case <-m.ctx.Done():
				return
			case <-t.C:
				go m.syncMetagraph()
			}
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", m.cfg.Port)
		if err := m.app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("miner server listen failed")
		}
	}()
	log.Info().Int("port", m.cfg.Port).Msg("miner server started")
}

func (m *Miner) syncMetagraph() {
	newMetagraph, err := m.Kami.GetMetagraph(m.cfg.Netuid)
	if err != nil {
		log.Error().Err(err).Msg("failed to get metagraph")
		return
	}
	m.metagraph.Update(&newMetagraph.Data)
}

func (m *Miner) serveAxon() error {
	ipInt := m.resolveIPInt()

	_, err := m.Kami.ServeAxon(kami.ServeAxonParams{
		Version: 1,
		IP:      ipInt,
		Port:    m.cfg.Port,
		IPType:  0, // IPv4
		Netuid:  m.cfg.Netuid,
	})
	if err != nil {
		return fmt.Errorf("serve axon: %w", err)
	}
	log.Info().Int("ip", ipInt).Int("port", m.cfg.Port).Msg("axon served on chain")
	return nil
}

// resolveIPInt converts the configured address (or the discovered external
// IP) to the integer form serve-axon expects.
func (m *Miner) resolveIPInt() int {
	if m.cfg.Address != "" {
		p := net.ParseIP(m.cfg.Address)
		if p == nil {
			if addrs, err := net.LookupIP(m.cfg.Address); err == nil && len(addrs) > 0 {
				p = addrs[0]
			}
		}
		if p != nil {
			if v, err := chainutils.IPv4ToInt(p); err == nil {
				return int(v)
			}
			log.Error().Str("address", m.cfg.Address).Msg("invalid ipv4 address, falling back to external IP")
		}
	}

	ext, err := chainutils.GetExternalIPInt()
	if err != nil {
		log.Error().Err(err).Msg("failed to determine external IP")
		return 0
	}
	return int(ext)
}

func (m *Miner) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	if err := m.app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("miner server shutdown failed")
	}
	log.Info().Msg("miner stopped")
}
