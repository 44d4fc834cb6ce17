package stocks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/shopspring/decimal"
)

var (
	ErrShortSeries       = errors.New("fewer than two daily closes")
	ErrZeroPreviousClose = errors.New("previous close is zero")
)

var hundred = decimal.NewFromInt(100)

// Snapshot is the day-over-day movement of one symbol.
type Snapshot struct {
	Symbol        string
	LatestClose   decimal.Decimal
	PreviousClose decimal.Decimal
	Change        decimal.Decimal
	PercentChange decimal.Decimal
	AlertNeeded   bool
}

// NewSnapshot applies the movement rule. Change and PercentChange are rounded
// to 2 places half away from zero; the percentage is taken from the rounded
// change. The threshold comparison is inclusive.
func NewSnapshot(symbol string, latest, previous, threshold decimal.Decimal) (Snapshot, error) {
	if previous.IsZero() {
		return Snapshot{}, ErrZeroPreviousClose
	}

	change := latest.Sub(previous).Round(2)
	percent := change.Mul(hundred).Div(previous).Round(2)

	return Snapshot{
		Symbol:        symbol,
		LatestClose:   latest,
		PreviousClose: previous,
		Change:        change,
		PercentChange: percent,
		AlertNeeded:   percent.Abs().GreaterThanOrEqual(threshold),
	}, nil
}

// Source provides the two most recent daily closes of a symbol.
type Source interface {
	DailyCloses(ctx context.Context, symbol string) ([]string, error)
}

// Report is the outcome of one evaluation pass. Snapshots holds only the
// symbols that succeeded; Skipped records why the others were dropped.
type Report struct {
	Symbols   []string
	Threshold decimal.Decimal
	Snapshots map[string]Snapshot
	Skipped   map[string]error
}

// Alerts returns the flagged snapshots in watchlist order.
func (r Report) Alerts() []Snapshot {
	var out []Snapshot
	for _, sym := range r.Symbols {
		if s, ok := r.Snapshots[sym]; ok && s.AlertNeeded {
			out = append(out, s)
		}
	}
	return out
}

// Evaluator runs the movement rule over a fixed watchlist.
type Evaluator struct {
	source    Source
	symbols   []string
	threshold decimal.Decimal
}

func NewEvaluator(source Source, symbols []string, threshold float64) *Evaluator {
	syms := make([]string, len(symbols))
	copy(syms, symbols)
	return &Evaluator{
		source:    source,
		symbols:   syms,
		threshold: decimal.NewFromFloat(threshold),
	}
}

// Evaluate fetches and evaluates every symbol independently. A symbol whose
// data cannot be used is logged and left out; the batch always completes.
func (e *Evaluator) Evaluate(ctx context.Context) Report {
	report := Report{
		Symbols:   e.symbols,
		Threshold: e.threshold,
		Snapshots: make(map[string]Snapshot, len(e.symbols)),
		Skipped:   make(map[string]error),
	}

	for _, sym := range e.symbols {
		snap, err := e.evaluateSymbol(ctx, sym)
		if err != nil {
			log.WithError(err).WithField("symbol", sym).Warn("Skipping symbol")
			report.Skipped[sym] = err
			continue
		}
		report.Snapshots[sym] = snap
	}

	return report
}

func (e *Evaluator) evaluateSymbol(ctx context.Context, symbol string) (Snapshot, error) {
	closes, err := e.source.DailyCloses(ctx, symbol)
	if err != nil {
		return Snapshot{}, err
	}
	if len(closes) < 2 {
		return Snapshot{}, ErrShortSeries
	}

	latest, err := decimal.NewFromString(strings.TrimSpace(closes[0]))
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest close %q: %w", closes[0], err)
	}
	previous, err := decimal.NewFromString(strings.TrimSpace(closes[1]))
	if err != nil {
		return Snapshot{}, fmt.Errorf("previous close %q: %w", closes[1], err)
	}

	return NewSnapshot(symbol, latest, previous, e.threshold)
}
