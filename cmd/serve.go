package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/smazurov/radionode/internal/api"
	"github.com/smazurov/radionode/internal/config"
	"github.com/smazurov/radionode/internal/convert"
	"github.com/smazurov/radionode/internal/device"
	"github.com/smazurov/radionode/internal/events"
	"github.com/smazurov/radionode/internal/led"
	"github.com/smazurov/radionode/internal/logging"
	"github.com/smazurov/radionode/internal/mdns"
	"github.com/smazurov/radionode/internal/metrics/collectors"
	"github.com/smazurov/radionode/internal/metrics/exporters"
	"github.com/smazurov/radionode/internal/nats"
	"github.com/smazurov/radionode/internal/pump"
	"github.com/smazurov/radionode/internal/stream"
	"github.com/smazurov/radionode/internal/systemd"
	"github.com/smazurov/radionode/pkg/linuxav/hotplug"
)

const sinkRetryDelay = 2 * time.Second

// ServeOptions configures the long-running service.
type ServeOptions struct {
	ConfigPath     string
	Addr           string
	AuthUsername   string
	AuthPassword   string
	MetricsEnabled bool
	LedsEnabled    bool
	// NatsServer enables the NATS bridge when set.
	NatsServer string
	NatsNode   string
	// MdnsInstance enables mDNS advertisement when set.
	MdnsInstance string
	// SinkPath enables the capture pump when set.
	SinkPath          string
	SinkFormat        string
	SinkStatsInterval time.Duration
}

// Service owns every component of the serve command.
type Service struct {
	opts   ServeOptions
	radio  config.RadioConfig
	logger *slog.Logger

	bus       *events.Bus
	dev       *device.Device
	server    *api.Server
	ledMgr    *led.Manager
	natsConn  *nats.Client
	bridge    *nats.Bridge
	watcher   *config.Watcher[config.Reloadable]
	collector *collectors.ALSACollector
	advert    *mdns.Advertiser
	notifier  *systemd.Notifier
	unsubs    []func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	frequency float64
}

// NewService builds the radio and the API around it. Nothing runs until Run.
func NewService(opts ServeOptions) (*Service, error) {
	logger := logging.GetLogger("serve")

	radio, err := config.LoadRadioConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	bus := events.New()
	dev, err := OpenRadio(radio, bus, logging.GetLogger("device"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		opts:      opts,
		radio:     radio,
		logger:    logger,
		bus:       bus,
		dev:       dev,
		ctx:       ctx,
		cancel:    cancel,
		frequency: radio.FrequencyHz,
		notifier:  systemd.NewNotifier(logging.GetLogger("systemd")),
	}

	apiOpts := &api.Options{
		AuthUsername: opts.AuthUsername,
		AuthPassword: opts.AuthPassword,
		Radio:        dev,
		EventBus:     bus,
	}
	if opts.MetricsEnabled {
		apiOpts.PrometheusHandler = exporters.HTTPHandler(logging.GetLogger("metrics"))
	}
	if opts.LedsEnabled {
		ctrl, mainLED := led.New(logging.GetLogger("led"))
		apiOpts.LEDController = ctrl
		s.ledMgr = led.NewManager(ctrl, mainLED, bus, logging.GetLogger("led"))
	}
	s.server = api.NewServer(apiOpts)

	if opts.NatsServer != "" {
		s.natsConn = nats.NewClient(opts.NatsServer, opts.NatsNode, logging.GetLogger("nats"))
		s.bridge = nats.NewBridge(s.natsConn, opts.NatsNode, bus, logging.GetLogger("nats"))
	}

	s.watcher = config.NewConfigWatcher(opts.ConfigPath, config.LoadReloadable, logging.GetLogger("config"))
	s.watcher.OnReload(s.applyReload)

	if opts.MetricsEnabled && !radio.Simulate {
		if path, err := captureStatusPath(radio.ALSADevice); err == nil {
			s.collector = collectors.NewALSACollector(radio.ALSADevice, path)
		} else {
			logger.Debug("ALSA status collection disabled", "error", err)
		}
	}
	return s, nil
}

// Run starts the background components and serves HTTP until Shutdown.
func (s *Service) Run() error {
	if s.ledMgr != nil {
		s.ledMgr.Start()
	}

	if s.natsConn != nil {
		if err := s.natsConn.Connect(); err != nil {
			s.logger.Warn("NATS unavailable, continuing without event mirroring", "error", err)
		}
		s.natsConn.OnTune(func(hz float64) error { return Tune(s.dev, hz) })
		s.bridge.Start()
	}

	if err := s.watcher.Start(); err != nil {
		s.logger.Warn("Config watcher disabled", "error", err)
	}

	if s.collector != nil {
		if err := s.collector.Start(s.ctx); err != nil {
			s.logger.Warn("ALSA collector failed to start", "error", err)
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := WatchSoundCards(s.ctx, s.bus, logging.GetLogger("hotplug")); err != nil {
			s.logger.Warn("Sound card hotplug disabled", "error", err)
		}
	}()

	if s.opts.SinkPath != "" {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runSink()
		}()
	}

	if s.opts.MdnsInstance != "" {
		s.advertise()
	}

	s.unsubs = append(s.unsubs, s.bus.Subscribe(func(e events.StreamStateChangedEvent) {
		s.notifier.Status(e.Direction + " " + e.Phase)
	}))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.notifier.RunWatchdog(s.ctx)
	}()
	s.notifier.Ready()

	if err := s.server.Start(s.opts.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Service) advertise() {
	port, err := mdns.PortFromAddr(s.opts.Addr)
	if err != nil {
		s.logger.Warn("mDNS disabled", "error", err)
		return
	}
	txt := []string{
		"driver=" + s.dev.DriverKey(),
		"hardware=" + s.dev.HardwareKey(),
		"alsa_device=" + s.dev.ALSADevice(),
	}
	if s.advert, err = mdns.Advertise(s.opts.MdnsInstance, port, txt, logging.GetLogger("mdns")); err != nil {
		s.logger.Warn("mDNS advertisement failed", "error", err)
	}
}

// runSink pumps capture samples into the sink until the service stops.
func (s *Service) runSink() {
	logger := logging.GetLogger("pump")

	format, err := convert.ParseFormat(s.opts.SinkFormat)
	if err != nil {
		logger.Error("Capture pump disabled", "error", err)
		return
	}

	arrivals := make(chan struct{}, 1)
	unsub := s.bus.Subscribe(func(e events.SoundCardEvent) {
		if e.Action == hotplug.ActionAdd {
			select {
			case arrivals <- struct{}{}:
			default:
			}
		}
	})
	defer unsub()

	for {
		err := s.pumpOnce(format, logger)
		if s.ctx.Err() != nil {
			return
		}

		// A sink error (a FIFO reader went away) retries on a timer; a dead
		// stream waits for the card to come back.
		var retry <-chan time.Time
		if stream.IsFatal(err) {
			logger.Error("Capture pump stopped, waiting for the sound card to return", "error", err)
		} else {
			logger.Warn("Capture pump stopped, retrying", "error", err, "delay", sinkRetryDelay)
			retry = time.After(sinkRetryDelay)
		}

		select {
		case <-s.ctx.Done():
			return
		case <-retry:
		case <-arrivals:
			logger.Info("Sound card arrived, restarting capture pump")
		}
	}
}

func (s *Service) pumpOnce(format convert.Format, logger *slog.Logger) error {
	// Opening a FIFO blocks until a reader attaches.
	f, err := os.OpenFile(s.opts.SinkPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer func() { _ = f.Close() }()

	p, err := pump.New(pump.Config{
		Device:        s.dev,
		Format:        format,
		Sink:          f,
		StatsInterval: s.opts.SinkStatsInterval,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	logger.Info("Capture pump started", "sink", s.opts.SinkPath, "format", string(format))
	res, err := p.Run(s.ctx)
	logger.Info("Capture pump finished", "frames", res.Frames, "overflows", res.Overflows, "timeouts", res.Timeouts)
	return err
}

// applyReload applies log levels and a changed startup frequency.
func (s *Service) applyReload(r config.Reloadable) {
	logging.SetLevels(r.Logging)

	s.mu.Lock()
	changed := r.Radio.FrequencyHz != s.frequency
	s.frequency = r.Radio.FrequencyHz
	s.mu.Unlock()

	if changed && r.Radio.FrequencyHz > 0 {
		if err := Tune(s.dev, r.Radio.FrequencyHz); err != nil {
			s.logger.Warn("Failed to apply reloaded frequency", "frequency_hz", r.Radio.FrequencyHz, "error", err)
			return
		}
	}
	s.logger.Info("Configuration reloaded")
}

// Shutdown stops components in reverse start order.
func (s *Service) Shutdown(ctx context.Context) {
	s.logger.Info("Shutting down")
	s.notifier.Stopping()
	for _, unsub := range s.unsubs {
		unsub()
	}

	if s.advert != nil {
		s.advert.Shutdown()
	}
	if err := s.server.Stop(ctx); err != nil {
		s.logger.Error("Error stopping HTTP server", "error", err)
	}

	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Background tasks did not stop in time")
	}

	if s.collector != nil {
		_ = s.collector.Stop()
	}
	if err := s.watcher.Stop(); err != nil {
		s.logger.Warn("Error stopping config watcher", "error", err)
	}
	if s.bridge != nil {
		s.bridge.Stop()
		s.natsConn.Close()
	}
	if s.ledMgr != nil {
		s.ledMgr.Stop()
	}
	if err := s.dev.Close(); err != nil {
		s.logger.Error("Error closing radio", "error", err)
	}
}
