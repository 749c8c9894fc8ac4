// Command arrayctl drives a phased-array device chain from a YAML
// configuration file: it probes firmware, initializes the devices, and
// exits, leaving the array silent and ready for a library caller to drive
// further sends.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/phasedctl/hostdriver/internal/auto"
	"github.com/phasedctl/hostdriver/internal/config"
	"github.com/phasedctl/hostdriver/internal/emulator"
	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/link"
	"github.com/phasedctl/hostdriver/internal/sender"
	"github.com/phasedctl/hostdriver/internal/transport/gpio"
	"github.com/phasedctl/hostdriver/internal/transport/serial"
	"github.com/phasedctl/hostdriver/internal/transport/tcp"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to phasedarray.yaml (searches default locations if empty)")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(*configPath); err != nil {
		log.Error("arrayctl failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	geo, err := config.BuildGeometry(cfg)
	if err != nil {
		return fmt.Errorf("building geometry: %w", err)
	}

	l, err := buildLink(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := link.EnsureOpen(ctx, l, geo); err != nil {
		return fmt.Errorf("opening link: %w", err)
	}

	ver, err := auto.Probe(ctx, l, geo)
	if err != nil {
		return fmt.Errorf("probing firmware: %w", err)
	}
	log.Info("negotiated firmware version", "version", ver)

	opt := senderOptionFrom(cfg.Sender)
	s := sender.New(l, geo, environment.Default(), ver, opt)

	if err := s.InitializeDevices(ctx); err != nil {
		return fmt.Errorf("initializing devices: %w", err)
	}
	log.Info("devices initialized", "count", geo.Len())

	return s.Close(ctx)
}

func buildLink(cfg *config.DriverConfig) (link.Link, error) {
	switch cfg.Link.Kind {
	case "tcp":
		return tcp.New(cfg.Link.TCP.Addr), nil
	case "serial":
		return serial.New(cfg.Link.Serial.Device, cfg.Link.Serial.Baud), nil
	case "gpio+tcp":
		inner := tcp.New(cfg.Link.TCP.Addr)
		return gpio.New(inner, cfg.Link.GPIO.Chip, cfg.Link.GPIO.Offset, cfg.Link.GPIO.ActiveLow), nil
	case "gpio+serial":
		inner := serial.New(cfg.Link.Serial.Device, cfg.Link.Serial.Baud)
		return gpio.New(inner, cfg.Link.GPIO.Chip, cfg.Link.GPIO.Offset, cfg.Link.GPIO.ActiveLow), nil
	case "emulator", "":
		return emulator.New(firmware.V12), nil
	default:
		return nil, fmt.Errorf("unknown link kind %q", cfg.Link.Kind)
	}
}

func senderOptionFrom(sc config.SenderConfig) sender.Option {
	opt := sender.DefaultOption()
	if sc.SendIntervalUs > 0 {
		opt.SendInterval = time.Duration(sc.SendIntervalUs) * time.Microsecond
	}
	if sc.ReceiveIntervalUs > 0 {
		opt.ReceiveInterval = time.Duration(sc.ReceiveIntervalUs) * time.Microsecond
	}
	if sc.TimeoutMs > 0 {
		opt.Timeout = time.Duration(sc.TimeoutMs) * time.Millisecond
	}
	switch sc.Parallel {
	case "always":
		opt.Parallel = sender.ParallelAlways
	case "never":
		opt.Parallel = sender.ParallelNever
	}
	opt.Strict = !sc.NonStrict
	if sc.FineSleep {
		opt.Sleeper = sender.FineSleeper{}
	}
	return opt
}
