package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/fatih/color"

	"github.com/swelljoe/alertagent/internal/config"
	"github.com/swelljoe/alertagent/internal/db"
)

func main() {
	log.SetHandler(cli.New(os.Stderr))

	limit := flag.Int("n", 10, "number of sessions to show")
	flag.Parse()

	if err := run(*limit); err != nil {
		log.WithError(err).Fatal("Failed to read history")
	}
}

func run(limit int) error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("no history database configured (set history.path or ALERTAGENT_HISTORY_DB)")
	}

	database, err := db.NewDB(cfg.History.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	sessions, err := database.RecentSessions(limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	for _, s := range sessions {
		delivered := color.RedString("not sent")
		if s.Delivered {
			delivered = color.GreenString("sent")
		}
		color.New(color.FgCyan).Printf("#%d %s", s.ID, s.StartedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("  %s  %d stock alert(s)\n", delivered, s.Alerts())
		if s.ReportPath != "" {
			fmt.Printf("   report: %s\n", s.ReportPath)
		}
		for _, snap := range s.Snapshots {
			if snap.AlertNeeded {
				fmt.Printf("   🚨 %s %s%%\n", snap.Symbol, snap.PercentChange.StringFixed(2))
			}
		}
		if line := firstLine(s.Summary); line != "" {
			fmt.Printf("   %s\n", line)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
