package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swelljoe/alertagent/internal/fetch"
	"github.com/swelljoe/alertagent/internal/news"
	"github.com/swelljoe/alertagent/internal/stocks"
	"github.com/swelljoe/alertagent/internal/weather"
)

// Sentinel lines written when a source had nothing to report.
const (
	NoWeatherAlerts = "No active weather alerts."
	NoNewsAlerts    = "No news alerts found."
	NoStockData     = "No stock data available."
)

const maxDescription = 400

// Section is one titled block of the session report.
type Section struct {
	Title string
	Body  string
}

func (s Section) String() string {
	var sb strings.Builder
	sb.WriteString(s.Title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.TrimRight(s.Body, "\n"))
	sb.WriteString("\n")
	return sb.String()
}

// Weather renders the alerts for location.
func Weather(location string, r fetch.Result[weather.Alert]) Section {
	s := Section{Title: fmt.Sprintf("⚠️ Weather Alerts for %s", location)}

	switch r.Status {
	case fetch.StatusFailed:
		s.Body = fmt.Sprintf("❌ Weather alerts unavailable: %s", r.Reason())
		return s
	case fetch.StatusEmpty:
		s.Body = "✅ " + NoWeatherAlerts
		return s
	}

	var sb strings.Builder
	for i, a := range r.Items {
		fmt.Fprintf(&sb, "🌀 Alert #%d: %s\n", i+1, orDefault(a.Event, "Unknown Event"))
		fmt.Fprintf(&sb, "📅 From: %s\n", orDefault(a.Effective, "N/A"))
		fmt.Fprintf(&sb, "📅 To: %s\n", orDefault(a.Expires, "N/A"))
		if a.Areas != "" {
			fmt.Fprintf(&sb, "📍 Areas: %s\n", a.Areas)
		}
		fmt.Fprintf(&sb, "📝 Description:\n%s\n", truncate(orDefault(a.Description, "No description provided."), maxDescription))
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
	}
	s.Body = sb.String()
	return s
}

// News renders the articles found for topic.
func News(topic string, r fetch.Result[news.Article]) Section {
	s := Section{Title: fmt.Sprintf("📰 News Alerts for %s", topic)}

	switch r.Status {
	case fetch.StatusFailed:
		s.Body = fmt.Sprintf("❌ News alerts unavailable: %s", r.Reason())
		return s
	case fetch.StatusEmpty:
		s.Body = "✅ " + NoNewsAlerts
		return s
	}

	var sb strings.Builder
	for i, a := range r.Items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, orDefault(a.Title, "Untitled"))
		published := "N/A"
		if !a.PublishedAt.IsZero() {
			published = a.PublishedAt.UTC().Format("2006-01-02 15:04 UTC")
		}
		if a.Source != "" {
			fmt.Fprintf(&sb, "🕒 %s | %s\n", published, a.Source)
		} else {
			fmt.Fprintf(&sb, "🕒 %s\n", published)
		}
		if a.Description != "" {
			fmt.Fprintf(&sb, "📝 %s\n", truncate(a.Description, maxDescription))
		}
		if a.URL != "" {
			fmt.Fprintf(&sb, "🔗 %s\n", a.URL)
		}
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
	}
	s.Body = sb.String()
	return s
}

// Stocks renders one line per watchlist symbol in watchlist order.
func Stocks(r stocks.Report) Section {
	s := Section{Title: "📈 Stock Alerts"}

	if len(r.Snapshots) == 0 {
		var sb strings.Builder
		sb.WriteString("❌ " + NoStockData + "\n")
		writeSkipped(&sb, r)
		s.Body = sb.String()
		return s
	}

	var sb strings.Builder
	for _, sym := range r.Symbols {
		snap, ok := r.Snapshots[sym]
		if !ok {
			continue
		}
		marker := "  "
		suffix := ""
		if snap.AlertNeeded {
			marker = "🚨"
			suffix = " ALERT"
		}
		fmt.Fprintf(&sb, "%s %s: %s -> %s (%s, %s%%)%s\n",
			marker, sym,
			snap.PreviousClose.StringFixed(2),
			snap.LatestClose.StringFixed(2),
			signed(snap.Change),
			signed(snap.PercentChange),
			suffix,
		)
	}
	writeSkipped(&sb, r)
	fmt.Fprintf(&sb, "Threshold: ±%s%%\n", r.Threshold.String())
	s.Body = sb.String()
	return s
}

func writeSkipped(sb *strings.Builder, r stocks.Report) {
	for _, sym := range r.Symbols {
		if err, ok := r.Skipped[sym]; ok {
			fmt.Fprintf(sb, "⚠️ %s: unavailable (%v)\n", sym, err)
		}
	}
}

// Stamp formats t the way section timestamps appear in the report.
func Stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
