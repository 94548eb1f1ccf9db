package main

import (
	"context"
	"flag"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/movement.trails/internal/config"
	"github.com/banshee-data/movement.trails/internal/httputil"
	"github.com/banshee-data/movement.trails/internal/monitor"
	"github.com/banshee-data/movement.trails/internal/position"
	"github.com/banshee-data/movement.trails/internal/report"
	"github.com/banshee-data/movement.trails/internal/status"
	"github.com/banshee-data/movement.trails/internal/timeutil"
	"github.com/banshee-data/movement.trails/internal/trails"
	"github.com/banshee-data/movement.trails/internal/trails/render"
	"github.com/banshee-data/movement.trails/internal/trails/sampler"
	"github.com/banshee-data/movement.trails/internal/version"
)

var (
	listen        = flag.String("listen", ":8090", "Listen address")
	configFile    = flag.String("config", "", "Path to trail config JSON (defaults are used when empty)")
	pollInterval  = flag.Duration("poll-interval", 0, "Position polling interval (overrides config)")
	devMode       = flag.Bool("dev", false, "Run in dev mode: subjects without page positions wander on a fixed orbit")
	logDiag       = flag.Bool("log-diag", false, "Enable diagnostic trail logging")
	logTrace      = flag.Bool("log-trace", false, "Enable per-sample trace logging")
	reportTimeout = flag.Duration("report-timeout", 10*time.Second, "Timeout for report lookups")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func logWriters() trails.LogWriters {
	w := trails.LogWriters{Ops: os.Stderr}
	if *logDiag {
		w.Diag = os.Stderr
	}
	if *logTrace {
		w.Trace = os.Stderr
	}
	return w
}

func loadConfig() *config.TrailConfig {
	if *configFile == "" {
		return config.EmptyTrailConfig()
	}
	cfg, err := config.LoadTrailConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.Printf("loaded trail config from %s", *configFile)
	return cfg
}

// orbit is the dev-mode source: each subject circles its own centre, with
// a two-second pause every lap that the default poll interval records as
// dwells.
func orbit(clock timeutil.Clock) sampler.PositionSourceFunc {
	start := clock.Now()
	return func(subject string) (trails.Point, bool) {
		h := fnv.New32a()
		_, _ = io.WriteString(h, subject)
		seed := float64(h.Sum32() % 360)

		t := clock.Since(start).Seconds()
		lap := math.Mod(t, 12)
		if lap > 10 {
			lap = 10
		}
		angle := (seed + lap*36) * math.Pi / 180
		cx, cy := 200+seed, 150+seed/2
		return trails.Point{X: cx + 80*math.Cos(angle), Y: cy + 80*math.Sin(angle)}, true
	}
}

// Main
func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	trails.SetLogWriters(logWriters())

	cfg := loadConfig()
	style, err := render.StyleFromTrailConfig(cfg)
	if err != nil {
		log.Fatalf("invalid trail style: %v", err)
	}

	clock := timeutil.RealClock{}
	registry := trails.NewRegistry(trails.ConfigFromTrailConfig(cfg), trails.WithColorPicker(render.Palette))
	feed := position.NewFeed(clock, cfg.GetFeedStaleAfter())

	source := position.Chain{feed}
	if *devMode {
		source = append(source, orbit(clock))
		log.Print("dev mode: synthesising positions for unknown subjects")
	}

	if *pollInterval > 0 {
		override := pollInterval.String()
		cfg.PollInterval = &override
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid -poll-interval: %v", err)
		}
	}
	replayClock := timeutil.NewReplayClock()
	smp := sampler.New(source, clock, sampler.Config{
		PollInterval: cfg.GetPollInterval(),
		Coalesce:     registry.Config(),
		ReplayTime:   replayClock.CurrentReplayTimeMs,
	})

	statusMux := status.NewMux()
	defer statusMux.Close()
	tracker := sampler.NewTracker(registry, smp, statusMux)

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address:     *listen,
		Registry:    registry,
		Tracker:     tracker,
		Renderer:    render.NewRenderer(style),
		Feed:        feed,
		ReplayClock: replayClock,
		Status:      statusMux,
		Reports:     report.NewClient(httputil.NewStandardClient(*reportTimeout)),
		Clock:       clock,
	})

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	log.Printf("trails %s, session %s, polling every %s", version.String(), registry.SessionID(), smp.PollInterval())

	<-ctx.Done()
	tracker.StopAll()
	wg.Wait()
	log.Print("trails server stopped")
}
