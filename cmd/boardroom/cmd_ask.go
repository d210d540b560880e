package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/boardroom-ai/boardroom/internal/auth"
	"github.com/boardroom-ai/boardroom/internal/config"
	"github.com/boardroom-ai/boardroom/internal/council"
	"github.com/boardroom-ai/boardroom/internal/gateway"
	"github.com/boardroom-ai/boardroom/internal/models"
	"github.com/boardroom-ai/boardroom/internal/prompts"
	"github.com/boardroom-ai/boardroom/internal/promptstore"
	"github.com/boardroom-ai/boardroom/internal/roster"
	"github.com/boardroom-ai/boardroom/internal/spinner"
)

// printer formats counts and ranks in progress and table output.
var printer = message.NewPrinter(language.English)

func newAskCommand() *cobra.Command {
	var quiet bool
	var dataDir string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Put a one-off question to the board",
		Long: `Put a one-off question to the board and print the chairman's answer.

Every active board member answers independently, then ranks the other
members' anonymized answers, and the chairman synthesizes a final reply
from the full deliberation. Progress and the consensus ranking go to
stderr; only the final answer is written to stdout, so the output is
safe to pipe.

The board roster is read from the configured data directory. Run
"boardroom init" first to set up a default board.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if dataDir != "" {
				cfg.Server.DataDir = dataDir
			}

			gw, err := newGateway(cfg)
			if err != nil {
				return err
			}

			return askCommandE(cmd, cfg, gw, strings.Join(args, " "), quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output and the consensus table")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory for roster storage (overrides config)")

	return cmd
}

func askCommandE(cmd *cobra.Command, cfg *config.Config, gw gateway.Gateway, query string, quiet bool) error {
	members := roster.NewStore(cfg.Server.DataDir)
	board, err := members.Snapshot(auth.LocalUser, cfg.Council.ChairmanModel)
	if err != nil {
		return fmt.Errorf("failed to load board roster: %w", err)
	}

	promptStore := promptstore.NewStore(cfg.Server.DataDir)
	orch, err := council.NewOrchestrator(gw, board,
		council.WithResolver(prompts.NewResolver(promptStore.ForUser(auth.LocalUser))),
		council.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}

	// On a terminal a spinner narrates the stages; piped output gets plain
	// progress lines.
	var sp *spinner.Spinner
	if !quiet {
		if f, ok := cmd.ErrOrStderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			sp = spinner.Start(f, printer.Sprintf("Consulting the board (%d members)...", len(board.Members)))
			defer sp.Stop()
			orch.OnEvent(spinnerNarrator(sp))
		} else {
			orch.OnEvent(progressPrinter(cmd.ErrOrStderr(), len(board.Members)))
		}
	}

	outcome, err := orch.Deliberate(cmd.Context(), query, nil)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nBoard consensus:\n%s\n", formatAggregateTable(outcome.Aggregate))
	}
	fmt.Fprintln(cmd.OutOrStdout(), outcome.Stage3.Response)
	return nil
}

// spinnerNarrator retitles the spinner at each stage boundary.
func spinnerNarrator(sp *spinner.Spinner) council.EventListener {
	return func(event models.Event) {
		switch event.Type {
		case models.EventStage2Start:
			sp.Update("Members are ranking each other's answers...")
		case models.EventStage3Start:
			sp.Update("Chairman is synthesizing the final answer...")
		}
	}
}

// progressPrinter returns a listener that narrates each stage boundary.
func progressPrinter(w io.Writer, memberCount int) council.EventListener {
	return func(event models.Event) {
		switch event.Type {
		case models.EventStage1Start:
			printer.Fprintf(w, "Consulting the board (%d members)...\n", memberCount)
		case models.EventStage1Complete:
			if results, ok := event.Data.([]models.StageResult); ok {
				printer.Fprintf(w, "Collected %d answers.\n", len(results))
			}
		case models.EventStage2Start:
			fmt.Fprintln(w, "Members are ranking each other's answers...")
		case models.EventStage3Start:
			fmt.Fprintln(w, "Chairman is synthesizing the final answer...")
		}
	}
}

// formatAggregateTable renders the consensus ranking as an aligned table,
// best average rank first.
func formatAggregateTable(entries []models.AggregateEntry) string {
	width := 0
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = fmt.Sprintf("%s (%s)", e.Title, e.Model)
		if w := runewidth.StringWidth(names[i]); w > width {
			width = w
		}
	}

	var b strings.Builder
	for i, e := range entries {
		line := fmt.Sprintf("  %d. %s", i+1, padRight(names[i], width))
		if e.VoteCount == 0 {
			b.WriteString(line + "  no votes\n")
			continue
		}
		b.WriteString(line + printer.Sprintf("  avg rank %.2f  (%d votes)\n", e.AverageRank, e.VoteCount))
	}
	return b.String()
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
