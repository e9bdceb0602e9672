package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SCORE_STORE", "")
	t.Setenv("TG_API_KEY", "")
	t.Setenv("TG_CHAT_ID", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.ScoreStore != ScoreStoreFile {
		t.Errorf("expected score store %q, got %q", ScoreStoreFile, cfg.ScoreStore)
	}
	if cfg.Schedule.Timezone != "Asia/Taipei" {
		t.Errorf("expected Asia/Taipei, got %s", cfg.Schedule.Timezone)
	}
	if cfg.Schedule.SentimentAt != "12:05" || cfg.Schedule.HeatmapAt != "08:05" {
		t.Errorf("unexpected schedule %s / %s", cfg.Schedule.SentimentAt, cfg.Schedule.HeatmapAt)
	}
	if cfg.Telegram.Enabled {
		t.Error("expected Telegram disabled without token and chat")
	}
	if len(cfg.Instruments) != 2 {
		t.Fatalf("expected 2 default instruments, got %d", len(cfg.Instruments))
	}
	if cfg.TopLevels != 5 {
		t.Errorf("expected 5 top levels, got %d", cfg.TopLevels)
	}
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	instruments := writeFile(t, dir, "instruments.toml", `
[[instrument]]
name = "solusdt"
tier = "minor"
step = 0.5
`)
	envPath := writeFile(t, dir, ".env", strings.Join([]string{
		"TG_API_KEY=123:abc",
		"TG_CHAT_ID=-1001",
		"SCORE_STORE=file",
		"SCORE_STORE_PATH=" + filepath.Join(dir, "last_index.txt"),
		"INSTRUMENTS_FILE=" + instruments,
		"SENTIMENT_AT=09:30",
	}, "\n"))

	// godotenv не перезаписывает уже установленные переменные
	for _, key := range []string{"TG_API_KEY", "TG_CHAT_ID", "SCORE_STORE", "SCORE_STORE_PATH", "INSTRUMENTS_FILE", "SENTIMENT_AT", "TELEGRAM_ENABLED"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig(envPath)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.Telegram.Enabled {
		t.Error("expected Telegram enabled when token and chat are set")
	}
	if cfg.Schedule.SentimentAt != "09:30" {
		t.Errorf("expected 09:30, got %s", cfg.Schedule.SentimentAt)
	}
	if len(cfg.Instruments) != 1 || cfg.Instruments[0].Name != "SOLUSDT" {
		t.Fatalf("expected SOLUSDT instrument, got %+v", cfg.Instruments)
	}
	if cfg.Instruments[0].Step != 0.5 {
		t.Errorf("expected step 0.5, got %v", cfg.Instruments[0].Step)
	}
	if cfg.Instruments[0].CoinglassSymbol != "Binance_SOLUSDT#heatmap" {
		t.Errorf("unexpected coinglass symbol %s", cfg.Instruments[0].CoinglassSymbol)
	}
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	t.Setenv("SCORE_STORE", "mongo")

	_, err := LoadConfig("")
	if err == nil {
		t.Fatal("expected error for unknown SCORE_STORE")
	}
	if !strings.Contains(err.Error(), "SCORE_STORE") {
		t.Errorf("expected SCORE_STORE in error, got %v", err)
	}
}

func TestValidateRedisStoreRequiresRedis(t *testing.T) {
	t.Setenv("SCORE_STORE", "redis")
	t.Setenv("REDIS_ENABLED", "false")

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected error when redis store is selected without redis")
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("08:05")
	if err != nil || h != 8 || m != 5 {
		t.Errorf("expected 8:5, got %d:%d (%v)", h, m, err)
	}

	for _, bad := range []string{"", "8", "24:00", "12:60", "aa:bb"} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseInstrumentsDefaults(t *testing.T) {
	insts, err := ParseInstruments([]byte(`
[[instrument]]
name = "BTCUSDT"
tier = "major"

[[instrument]]
name = "ETHUSDT"
page_tab = "Binance ETHUSDT"
`))
	if err != nil {
		t.Fatalf("ParseInstruments: %v", err)
	}
	if insts[0].Step != 100 {
		t.Errorf("expected major step 100, got %v", insts[0].Step)
	}
	if insts[1].Step != 10 || insts[1].Tier != TierMinor {
		t.Errorf("expected minor step 10, got %+v", insts[1])
	}
}

func TestParseInstrumentsErrors(t *testing.T) {
	cases := map[string]string{
		"empty":     ``,
		"no name":   "[[instrument]]\ntier = \"major\"\n",
		"bad tier":  "[[instrument]]\nname = \"X\"\ntier = \"mega\"\n",
		"duplicate": "[[instrument]]\nname = \"X\"\n[[instrument]]\nname = \"x\"\n",
		"nan step":  "[[instrument]]\nname = \"X\"\nstep = nan\n",
		"inf step":  "[[instrument]]\nname = \"X\"\nstep = inf\n",
		"-inf step": "[[instrument]]\nname = \"X\"\nstep = -inf\n",
	}
	for name, data := range cases {
		if _, err := ParseInstruments([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadInstrumentsMissingFileFallsBack(t *testing.T) {
	insts, err := LoadInstruments(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadInstruments: %v", err)
	}
	if len(insts) != 2 {
		t.Errorf("expected default instruments, got %d", len(insts))
	}
}
