package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/shopspring/decimal"

	"github.com/swelljoe/alertagent/internal/bridge"
	"github.com/swelljoe/alertagent/internal/config"
	"github.com/swelljoe/alertagent/internal/db"
	"github.com/swelljoe/alertagent/internal/session"
	"github.com/swelljoe/alertagent/internal/stocks"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"info", log.InfoLevel},
		{"verbose", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadConfigFallsBackOnBadFile(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "token")
	t.Setenv("ALERTAGENT_HISTORY_DB", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http:\n  timeout: soon\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg := loadConfig(path)
	if cfg == nil {
		t.Fatal("Expected a configuration, got nil")
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout, got %v", cfg.HTTP.Timeout)
	}
	if cfg.TelegramBotToken != "token" {
		t.Errorf("Expected env secrets to survive fallback, got %q", cfg.TelegramBotToken)
	}
}

func TestNewSummarizerUnknownProvider(t *testing.T) {
	cfg := config.Defaults()
	cfg.Summarizer.Provider = "llama"

	s := newSummarizer(cfg)
	if s == nil {
		t.Fatal("Expected fallback summarizer, got nil")
	}
	if s.Name() != "openai/gpt-4o" {
		t.Errorf("Expected openai fallback, got %q", s.Name())
	}
}

func TestRecordHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	snap, err := stocks.NewSnapshot("TSLA", decimal.NewFromInt(94), decimal.NewFromInt(100), decimal.NewFromInt(3))
	if err != nil {
		t.Fatal(err)
	}

	recordHistory(path, session.Result{
		StartedAt:  time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC),
		ReportPath: "logs/alert_summary_2025-07-02_09-00-00.txt",
		Snapshots:  []stocks.Snapshot{snap},
		Outcome:    bridge.Outcome{Summary: "🧠 Agent Summary:", Delivered: true},
	})

	database, err := db.NewDB(path)
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}
	defer database.Close()

	got, err := database.RecentSessions(1)
	if err != nil {
		t.Fatalf("RecentSessions() error = %v", err)
	}
	if len(got) != 1 || !got[0].Delivered || got[0].Alerts() != 1 {
		t.Errorf("Unexpected history %+v", got)
	}
}

func TestRecordHistoryFailOpen(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	// Neither call may panic or exit.
	recordHistory("", session.Result{})
	recordHistory(filepath.Join(blocker, "history.db"), session.Result{})
}
