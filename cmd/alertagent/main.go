package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"

	"github.com/swelljoe/alertagent/internal/bridge"
	"github.com/swelljoe/alertagent/internal/config"
	"github.com/swelljoe/alertagent/internal/db"
	"github.com/swelljoe/alertagent/internal/news"
	"github.com/swelljoe/alertagent/internal/report"
	"github.com/swelljoe/alertagent/internal/session"
	"github.com/swelljoe/alertagent/internal/stocks"
	"github.com/swelljoe/alertagent/internal/summarize"
	"github.com/swelljoe/alertagent/internal/telegram"
	"github.com/swelljoe/alertagent/internal/weather"
)

func main() {
	log.SetHandler(cli.New(os.Stderr))

	cfg := loadConfig(config.Path())
	log.SetLevel(parseLevel(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The first interrupt ends the session; a second one kills the process.
	context.AfterFunc(ctx, stop)

	summarizer := newSummarizer(cfg)
	log.WithField("summarizer", summarizer.Name()).Debug("Summarizer ready")

	tg := telegram.NewClient(cfg.Endpoints.Telegram, cfg.TelegramBotToken, cfg.TelegramChatID, cfg.HTTP.Timeout)
	stockClient := stocks.NewClient(cfg.Endpoints.Stocks, cfg.StocksAPIKey, cfg.HTTP.Timeout)

	s := session.New(session.Deps{
		Weather:         weather.NewService(weather.NewClient(cfg.Endpoints.Weather, cfg.WeatherAPIKey, cfg.HTTP.Timeout)),
		News:            news.NewClient(cfg.Endpoints.News, cfg.NewsAPIKey, cfg.News.PageSize, cfg.HTTP.Timeout),
		Stocks:          stocks.NewEvaluator(stockClient, cfg.Stocks.Symbols, cfg.Stocks.Threshold),
		Writer:          report.NewWriter(cfg.Report.OutputDir),
		Bridge:          bridge.New(summarizer, tg),
		DefaultLocation: cfg.Weather.DefaultLocation,
		DefaultTopic:    cfg.News.DefaultTopic,
		In:              os.Stdin,
		Out:             os.Stdout,
	})

	res := s.Run(ctx)
	recordHistory(cfg.History.Path, res)
}

// loadConfig never fails. A broken config file is reported and replaced by
// defaults plus the environment.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Failed to load configuration, using defaults")
		return config.Defaults()
	}
	return cfg
}

func parseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithError(err).WithField("level", level).Warn("Unknown log level, using info")
		return log.InfoLevel
	}
	return lvl
}

func newSummarizer(cfg *config.Config) summarize.Summarizer {
	s, err := summarize.New(summarize.Options{
		Provider:        cfg.Summarizer.Provider,
		Model:           cfg.Summarizer.Model,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		Timeout:         cfg.HTTP.Timeout,
	})
	if err != nil {
		log.WithError(err).Warn("Falling back to the openai summarizer")
		return summarize.NewOpenAIClient(cfg.OpenAIAPIKey, "", "", &http.Client{Timeout: cfg.HTTP.Timeout})
	}
	return s
}

// recordHistory stores the finished session when a history database is
// configured. Failures are logged only.
func recordHistory(path string, res session.Result) {
	if path == "" {
		return
	}

	database, err := db.NewDB(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("History database unavailable")
		log.Info("Continuing without history...")
		return
	}
	defer database.Close()

	id, err := database.RecordSession(db.SessionRecord{
		StartedAt:  res.StartedAt,
		ReportPath: res.ReportPath,
		Summary:    res.Outcome.Summary,
		Delivered:  res.Outcome.Delivered,
		Snapshots:  res.Snapshots,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to record session history")
		return
	}
	log.WithField("session", id).Debug("Session recorded")
}
