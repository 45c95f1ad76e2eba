package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"zap-engine/internal/config"
	"zap-engine/internal/demo"
	"zap-engine/internal/engine"
	"zap-engine/internal/host"
	"zap-engine/internal/telemetry"
)

func main() {
	if err := godotenv.Load(".env"); err == nil {
		log.Println("✅ Loaded environment from .env")
	} else {
		log.Println("💡 No .env file found, using environment variables only")
	}

	log.Println("⚡ ================================")
	log.Println("⚡  ZAP ENGINE")
	log.Println("⚡ ================================")

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("❌ Config: %v", err)
	}

	runner := engine.NewRunner(demo.New())

	// Manifest parse failures refuse engine start.
	if cfg.Engine.ManifestPath != "" {
		data, err := os.ReadFile(cfg.Engine.ManifestPath)
		if err != nil {
			log.Fatalf("❌ Manifest read: %v", err)
		}
		if err := runner.LoadManifest(data); err != nil {
			log.Fatalf("❌ Manifest: %v", err)
		}
	} else {
		log.Println("💡 No MANIFEST_PATH set, running with literal sprite cells")
	}

	// Telemetry (optional).
	recorder, err := telemetry.New(cfg.Telemetry.Dir, cfg.Telemetry.FlushInterval)
	if err != nil {
		log.Printf("⚠️ Telemetry disabled: %v", err)
	} else if recorder != nil {
		log.Printf("📝 Telemetry: %s/ticks.csv", cfg.Telemetry.Dir)
	}

	// Host server + frame hub.
	server := host.NewServer(runner, cfg.Host)

	runner.OnStats = func(s engine.TickStats) {
		host.ObserveTick(s)
		recorder.Record(s)
	}
	runner.OnFrame = func(frame uint64, data []float32) {
		server.Hub().Broadcast(frame, data)
	}
	runner.OnSounds = func(sounds []uint8) {
		server.Hub().BroadcastQueues(sounds, nil)
	}
	runner.OnEvents = func(events []engine.GameEvent) {
		server.Hub().BroadcastQueues(nil, events)
	}

	if err := host.StartDebugServer(cfg.Observability); err != nil {
		log.Printf("⚠️ Debug server disabled: %v", err)
	}

	runner.Start()
	log.Println("✅ Engine started")

	go func() {
		addr := ":" + strconv.Itoa(cfg.Host.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("❌ Host server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Println("✅ Ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	runner.Stop()
	if err := recorder.Close(); err != nil {
		log.Printf("⚠️ Telemetry close: %v", err)
	}
	log.Println("👋 Goodbye!")
}
