package bridge

import (
	"context"
	"errors"
	"strings"

	"github.com/apex/log"

	"github.com/swelljoe/alertagent/internal/report"
	"github.com/swelljoe/alertagent/internal/telegram"
)

// NothingToSummarize replaces the summary when the report is empty or
// cannot be read.
const NothingToSummarize = "❌ No log content to summarize."

// FailedSummaryPrefix starts the text delivered when summarization fails.
const FailedSummaryPrefix = "❌ Failed to generate summary: "

// Summarizer produces a digest of a report.
type Summarizer interface {
	Summarize(ctx context.Context, report string) (string, error)
}

// Deliverer forwards the digest to the chat.
type Deliverer interface {
	SendMessage(ctx context.Context, text string) error
}

// Outcome is what the bridge did with a report.
type Outcome struct {
	Summary   string
	Delivered bool
}

// Bridge reads a persisted report, summarizes it and delivers the result.
type Bridge struct {
	summarizer Summarizer
	deliverer  Deliverer
}

func New(summarizer Summarizer, deliverer Deliverer) *Bridge {
	return &Bridge{summarizer: summarizer, deliverer: deliverer}
}

// Finish never fails. Every problem is logged and replaced with a
// placeholder so the session can end normally.
func (b *Bridge) Finish(ctx context.Context, path string) Outcome {
	summary := b.summarize(ctx, path)
	return Outcome{
		Summary:   summary,
		Delivered: b.deliver(ctx, summary),
	}
}

func (b *Bridge) summarize(ctx context.Context, path string) string {
	text, err := report.Read(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Could not read report")
		return NothingToSummarize
	}
	if strings.TrimSpace(text) == "" {
		return NothingToSummarize
	}
	if b.summarizer == nil {
		return FailedSummaryPrefix + "no summarizer configured"
	}

	summary, err := b.summarizer.Summarize(ctx, text)
	if err != nil {
		log.WithError(err).Warn("Summarization failed")
		return FailedSummaryPrefix + err.Error()
	}
	return summary
}

func (b *Bridge) deliver(ctx context.Context, text string) bool {
	if b.deliverer == nil {
		log.Warn("No messaging client configured, summary not sent")
		return false
	}

	err := b.deliverer.SendMessage(ctx, text)
	switch {
	case errors.Is(err, telegram.ErrMissingCredentials):
		log.Warn("Missing Telegram token or chat ID, summary not sent")
		return false
	case err != nil:
		log.WithError(err).Warn("Failed to send Telegram message")
		return false
	}

	log.Info("Summary sent to Telegram")
	return true
}
