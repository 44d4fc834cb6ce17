package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"

	"github.com/swelljoe/alertagent/internal/bridge"
	"github.com/swelljoe/alertagent/internal/fetch"
	"github.com/swelljoe/alertagent/internal/news"
	"github.com/swelljoe/alertagent/internal/render"
	"github.com/swelljoe/alertagent/internal/report"
	"github.com/swelljoe/alertagent/internal/stocks"
	"github.com/swelljoe/alertagent/internal/weather"
)

type WeatherFetcher interface {
	Fetch(ctx context.Context, location string) fetch.Result[weather.Alert]
}

type NewsFetcher interface {
	Fetch(ctx context.Context, topic string) fetch.Result[news.Article]
}

type StockEvaluator interface {
	Evaluate(ctx context.Context) stocks.Report
}

type Persister interface {
	Persist(b *report.Buffer, startedAt time.Time) (string, error)
}

type Finisher interface {
	Finish(ctx context.Context, path string) bridge.Outcome
}

// Deps wires a session to its collaborators.
type Deps struct {
	Weather WeatherFetcher
	News    NewsFetcher
	Stocks  StockEvaluator
	Writer  Persister
	Bridge  Finisher

	DefaultLocation string
	DefaultTopic    string

	In  io.Reader
	Out io.Writer
	Now func() time.Time
}

// Result describes a finished session.
type Result struct {
	StartedAt  time.Time
	ReportPath string
	Sections   int
	Snapshots  []stocks.Snapshot
	Outcome    bridge.Outcome
}

// Session is one pass through the interactive menu. It owns the report
// buffer and is strictly sequential.
type Session struct {
	deps      Deps
	in        *bufio.Scanner
	lines     chan string
	out       io.Writer
	now       func() time.Time
	buffer    *report.Buffer
	state     State
	startedAt time.Time
	snapshots []stocks.Snapshot
	handlers  map[State]func(context.Context) State
}

func New(deps Deps) *Session {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	s := &Session{
		deps:   deps,
		in:     bufio.NewScanner(deps.In),
		out:    deps.Out,
		now:    now,
		buffer: report.NewBuffer(),
		state:  StateMenu,
	}
	s.handlers = map[State]func(context.Context) State{
		StateMenu:    s.menu,
		StateWeather: s.weather,
		StateNews:    s.news,
		StateStocks:  s.stocks,
	}
	return s
}

// State returns the current state of the loop.
func (s *Session) State() State {
	return s.state
}

// Buffer exposes the report accumulated so far.
func (s *Session) Buffer() *report.Buffer {
	return s.buffer
}

// Run drives the menu until the user exits, then persists the report and
// hands it to the bridge. It runs at most once.
func (s *Session) Run(ctx context.Context) Result {
	s.startedAt = s.now()

	for s.state != StateExit {
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).Warn("Session interrupted")
			s.state = StateExit
			break
		}
		s.state = s.handlers[s.state](ctx)
	}

	return s.finish(ctx)
}

func (s *Session) menu(ctx context.Context) State {
	color.New(color.FgCyan, color.Bold).Fprintln(s.out, "\n🔔 Real-Time Alert Agent")
	fmt.Fprintln(s.out, "1. Weather alerts")
	fmt.Fprintln(s.out, "2. News alerts")
	fmt.Fprintln(s.out, "3. Stock alerts")
	fmt.Fprintln(s.out, "4. Exit")
	fmt.Fprint(s.out, "Choose an option: ")

	input, ok := s.readLine(ctx)
	if !ok {
		fmt.Fprintln(s.out)
		return StateExit
	}

	next, valid := ParseChoice(input)
	if !valid {
		color.New(color.FgRed).Fprintf(s.out, "❌ Invalid choice %q. Please enter 1-4 or exit.\n", strings.TrimSpace(input))
	}
	return next
}

func (s *Session) weather(ctx context.Context) State {
	location := s.prompt(ctx, "Enter location", s.deps.DefaultLocation)
	if ctx.Err() != nil {
		return StateExit
	}
	color.New(color.FgCyan).Fprintf(s.out, "🌦️ Checking weather alerts for %s...\n", location)

	r := s.deps.Weather.Fetch(ctx, location)
	s.emit(render.Weather(location, r))
	return StateMenu
}

func (s *Session) news(ctx context.Context) State {
	topic := s.prompt(ctx, "Enter news topic", s.deps.DefaultTopic)
	if ctx.Err() != nil {
		return StateExit
	}
	color.New(color.FgCyan).Fprintf(s.out, "📰 Checking news for %s...\n", topic)

	r := s.deps.News.Fetch(ctx, topic)
	s.emit(render.News(topic, r))
	return StateMenu
}

func (s *Session) stocks(ctx context.Context) State {
	color.New(color.FgCyan).Fprintln(s.out, "📈 Checking stock movements...")

	r := s.deps.Stocks.Evaluate(ctx)
	for _, sym := range r.Symbols {
		if snap, ok := r.Snapshots[sym]; ok {
			s.snapshots = append(s.snapshots, snap)
		}
	}
	s.emit(render.Stocks(r))
	return StateMenu
}

// emit shows a section and appends it, stamped, to the report.
func (s *Session) emit(section render.Section) {
	fmt.Fprintln(s.out)
	color.New(color.FgYellow).Fprintln(s.out, section.Title)
	color.New(color.FgMagenta).Fprintln(s.out, strings.Repeat("=", 70))
	fmt.Fprintln(s.out, strings.TrimRight(section.Body, "\n"))

	s.buffer.Append(fmt.Sprintf("[%s]\n%s", render.Stamp(s.now()), section))
}

func (s *Session) finish(ctx context.Context) Result {
	res := Result{
		StartedAt: s.startedAt,
		Sections:  s.buffer.Sections(),
		Snapshots: s.snapshots,
	}

	path, err := s.deps.Writer.Persist(s.buffer, s.startedAt)
	if err != nil {
		log.WithError(err).Error("Failed to write alert report")
	} else {
		res.ReportPath = path
		color.New(color.FgGreen).Fprintf(s.out, "📝 Report saved to %s\n", path)
	}

	// The report is delivered even when the session was interrupted; the
	// clients' own timeouts still bound the calls.
	res.Outcome = s.deps.Bridge.Finish(context.WithoutCancel(ctx), path)
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, res.Outcome.Summary)
	return res
}

func (s *Session) prompt(ctx context.Context, label, fallback string) string {
	if fallback != "" {
		fmt.Fprintf(s.out, "%s [%s]: ", label, fallback)
	} else {
		fmt.Fprintf(s.out, "%s: ", label)
	}

	input, _ := s.readLine(ctx)
	input = strings.TrimSpace(input)
	if input == "" {
		return fallback
	}
	return input
}

// readLine returns the next input line. It gives up when ctx is done or the
// input is exhausted.
func (s *Session) readLine(ctx context.Context) (string, bool) {
	if s.lines == nil {
		s.lines = make(chan string)
		go s.scan()
	}

	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-s.lines:
		return line, ok
	}
}

func (s *Session) scan() {
	defer close(s.lines)
	for s.in.Scan() {
		s.lines <- s.in.Text()
	}
}
