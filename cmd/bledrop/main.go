package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"bledrop/internal/ble"
	"bledrop/internal/config"
	"bledrop/internal/keyboard"
	"bledrop/internal/transfer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/bledrop/config.yaml)")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	setupLogging(cfg.LogLevel)
	printBanner(cfg)

	// Provision the download root once; the protocol core never creates
	// directories itself.
	if err := os.MkdirAll(cfg.DownloadDir, 0755); err != nil {
		log.Fatalf("creating download dir %s: %v", cfg.DownloadDir, err)
	}

	// Wire the core: peripheral -> receiver -> store, diagnostics to slog.
	// The peripheral is created first so the optional status-notify sink
	// can reference it; writes only start flowing after peripheral.Start.
	var receiver *transfer.Receiver
	peripheral := ble.NewPeripheral(cfg.DeviceName, func(data []byte) {
		receiver.HandleWrite(data)
	})

	var sink transfer.Sink = transfer.NewSlogSink(slog.Default())
	if cfg.StatusNotify {
		sink = &notifySink{next: sink, transport: peripheral}
	}

	store := transfer.NewDirStore(cfg.DownloadDir)
	receiver = transfer.NewReceiver(store, sink, cfg.ReceiveEnabled)
	receiver.Start()
	defer receiver.Stop()

	if err := peripheral.Start(); err != nil {
		log.Fatalf("ble: %v", err)
	}

	if cfg.AdvertiseOnStart {
		if err := peripheral.StartAdvertising(); err != nil {
			log.Fatalf("ble: %v", err)
		}
	}

	// Signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Operator keys; keep running headless when stdin is not a terminal.
	keys := keyboard.NewListener()
	var keyCh <-chan byte
	if err := keys.Start(); err != nil {
		slog.Warn("[KEYS] keyboard control unavailable", "error", err)
	} else {
		keyCh = keys.Events()
		defer keys.Stop()
		printControls()
	}

	for {
		select {
		case key, ok := <-keyCh:
			if !ok {
				slog.Info("[KEYS] stdin closed, keyboard control off")
				keyCh = nil
				continue
			}
			if key >= 'A' && key <= 'Z' {
				key += 'a' - 'A'
			}
			switch key {
			case 'a':
				if err := peripheral.StartAdvertising(); err != nil {
					slog.Error("[ADV] start failed", "error", err)
				}
			case 's':
				if err := peripheral.StopAdvertising(); err != nil {
					slog.Error("[ADV] stop failed", "error", err)
				}
			case 'e':
				enabled := !receiver.Enabled()
				receiver.SetEnabled(enabled)
				slog.Info("[FILE] receive gate toggled", "enabled", enabled)
			case 'v':
				path := receiver.LastSavedPath()
				if path == "" {
					path = "-"
				}
				slog.Info("[FILE] last saved", "path", path)
			case 'q':
				slog.Info("[SYS] shutting down")
				shutdown(peripheral)
				return
			}

		case sig := <-sigCh:
			slog.Info("[SYS] shutting down", "signal", sig.String())
			shutdown(peripheral)
			return
		}
	}
}

func shutdown(peripheral *ble.Peripheral) {
	if err := peripheral.StopAdvertising(); err != nil {
		slog.Warn("[ADV] stop failed during shutdown", "error", err)
	}
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses defaults plus environment overrides.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	// No config file, use defaults and environment
	log.Println("No config file found, using defaults")
	return config.FromEnv()
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== bledrop ===")
	fmt.Printf("  Device:    %s\n", cfg.DeviceName)
	fmt.Printf("  Downloads: %s\n", cfg.DownloadDir)
	fmt.Printf("  Receive:   %v\n", cfg.ReceiveEnabled)
	fmt.Printf("  Advertise: %v\n", cfg.AdvertiseOnStart)
	fmt.Printf("  Log:       %s\n", cfg.LogLevel)
	fmt.Println("===============")
}

func printControls() {
	fmt.Println("Controls:")
	fmt.Println("  a = start advertising")
	fmt.Println("  s = stop advertising")
	fmt.Println("  e = toggle file receiving on/off")
	fmt.Println("  v = show last saved file path")
	fmt.Println("  q = quit")
}

// notifySink forwards saved-file events to the TX characteristic as a
// short JSON status, in addition to the wrapped sink. The protocol core
// itself stays acknowledgment-free; this rides on the notify channel the
// transport already exposes.
type notifySink struct {
	next      transfer.Sink
	transport ble.Transport
}

func (s *notifySink) Emit(ev transfer.Event) {
	s.next.Emit(ev)
	if ev.Kind != transfer.EventSaved {
		return
	}
	msg, err := json.Marshal(map[string]any{
		"op":    "file_saved",
		"name":  filepath.Base(ev.Path),
		"bytes": ev.Bytes,
	})
	if err != nil {
		return
	}
	if err := s.transport.Notify(msg); err != nil {
		slog.Debug("[BLE] status notify failed", "error", err)
	}
}
