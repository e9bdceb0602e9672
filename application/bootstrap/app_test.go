package bootstrap

import (
	"path/filepath"
	"testing"
	"time"

	"crypto-market-pulse-bot/internal/infrastructure/config"
)

func minimalConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		ScoreStore:     config.ScoreStoreFile,
		ScoreStorePath: filepath.Join(t.TempDir(), "last_index.txt"),
		Instruments:    config.DefaultInstruments(),
		TopLevels:      5,
		LogLevel:       "info",
	}
	cfg.Schedule = config.ScheduleConfig{
		Timezone:       "UTC",
		SentimentAt:    "12:05",
		HeatmapAt:      "08:05",
		JobTimeout:     time.Minute,
		HeatmapDayHour: 8,
	}
	cfg.Coinglass = config.CoinglassConfig{APIURL: "http://127.0.0.1:1/heatmap", Interval: "d1"}
	return cfg
}

func TestBuildWithoutBrowserRegistersOnlyHeatmap(t *testing.T) {
	app, err := NewAppBuilder().
		WithConfig(minimalConfig(t)).
		WithRunOnStart(false).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := app.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	jobs := app.scheduler.Jobs()
	if len(jobs) != 1 || jobs[0].Name != JobHeatmap {
		t.Fatalf("expected only %s job, got %+v", JobHeatmap, jobs)
	}
	if app.sentiment != nil {
		t.Error("sentiment pipeline must not be built without browser")
	}
	if app.metricsServer != nil {
		t.Error("metrics server must be disabled by default")
	}
	if len(app.notifier.GetNotifiers()) != 1 || app.notifier.GetNotifiers()[0].Name() != "console" {
		t.Errorf("expected console fallback notifier")
	}
}

func TestBuildWithBrowserRegistersBothJobs(t *testing.T) {
	cfg := minimalConfig(t)
	cfg.Browser.Enabled = true

	app, err := NewAppBuilder().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := app.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if got := len(app.scheduler.Jobs()); got != 2 {
		t.Errorf("expected 2 jobs, got %d", got)
	}
}

func TestRedisStoreRequiresRedis(t *testing.T) {
	cfg := minimalConfig(t)
	cfg.ScoreStore = config.ScoreStoreRedis

	app, err := NewApplication(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := app.Initialize(); err == nil {
		t.Fatal("expected error without redis")
	}
}

func TestOptions(t *testing.T) {
	cfg := minimalConfig(t)
	app, err := NewAppBuilder().
		WithConfig(cfg).
		WithTestMode(true).
		WithOption(WithMetrics(true, 9191)).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !app.config.MonitoringTestMode {
		t.Error("expected test mode")
	}
	if !app.config.HTTPEnabled || app.config.HTTPPort != 9191 {
		t.Errorf("expected metrics on 9191, got %v/%d", app.config.HTTPEnabled, app.config.HTTPPort)
	}

	if _, err := NewAppBuilder().WithConfig(minimalConfig(t)).WithOption(WithMetrics(true, 0)).Build(); err == nil {
		t.Error("expected invalid port error")
	}
}

func TestStopBeforeRunIsSafe(t *testing.T) {
	app, err := NewApplication(minimalConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = app.Stop()
	_ = app.Stop()
	if app.IsRunning() {
		t.Error("must not be running")
	}
}
