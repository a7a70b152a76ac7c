package main

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alias1177/StudioPredictor/internal/analyze"
	"github.com/Alias1177/StudioPredictor/internal/baktest"
	"github.com/Alias1177/StudioPredictor/internal/patterns"
	"github.com/Alias1177/StudioPredictor/internal/view"
	"github.com/Alias1177/StudioPredictor/models"
)

var addCmd = &cobra.Command{
	Use:     "add <H|A|T>...",
	Aliases: []string{"submit"},
	Short:   "Record one or more results in order",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcomes, err := baktest.ParseSequence(strings.Join(args, " "))
		if err != nil {
			return err
		}
		engine, err := openEngine(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			ev, err := engine.Submit(cmd.Context(), o)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.Event(ev))
		}
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Remove the most recent result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		return undo(cmd, engine)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase all results, suggestions and statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		if err := engine.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the suggestion, accuracy, history grid and recent suggestions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.Dashboard(engine, cfg.HistoryLimit, cfg.SignalsLimit))
		return nil
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Enter results interactively (h, a, t, undo, clear, status, quit)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		return repl(cmd, engine, cmd.InOrStdin())
	},
}

var backtestCmd = &cobra.Command{
	Use:   "backtest <sequence>",
	Short: "Replay a sequence of results oldest first and report how the patterns would have done",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcomes, err := baktest.ParseSequence(strings.Join(args, " "))
		if err != nil {
			return err
		}
		results, err := baktest.RunBacktest(cmd.Context(), outcomes)
		if err != nil {
			return err
		}
		printBacktest(cmd.OutOrStdout(), results)
		return nil
	},
}

func undo(cmd *cobra.Command, engine *analyze.Engine) error {
	removed, err := engine.Undo(cmd.Context())
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to undo.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Last result removed.")
	return nil
}

func repl(cmd *cobra.Command, engine *analyze.Engine, in io.Reader) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, view.Dashboard(engine, cfg.HistoryLimit, cfg.SignalsLimit))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		case "u", "undo":
			if err := undo(cmd, engine); err != nil {
				return err
			}
		case "c", "clear":
			if err := engine.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "History cleared.")
		case "s", "status":
			fmt.Fprintln(out, view.Dashboard(engine, cfg.HistoryLimit, cfg.SignalsLimit))
		default:
			outcome, err := models.ParseOutcome(line)
			if err != nil {
				fmt.Fprintf(out, "unknown input %q, expected h, a, t, undo, clear, status or quit\n", line)
				continue
			}
			ev, err := engine.Submit(cmd.Context(), outcome)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, view.Event(ev))
		}
	}
}

func printBacktest(w io.Writer, r *models.BacktestResults) {
	fmt.Fprintf(w, "Results replayed: %d\n", r.Outcomes)
	fmt.Fprintln(w, view.Metrics(models.Performance{Total: r.Total, Hits: r.Hits, Misses: r.Misses}))
	fmt.Fprintf(w, "Longest streaks: %d hits, %d misses\n", r.MaxConsecutive.Hits, r.MaxConsecutive.Misses)
	if r.Unresolved {
		fmt.Fprintln(w, "The last suggestion is still open.")
	}

	ids := make([]int, 0, len(r.PatternPerformance))
	for id := range r.PatternPerformance {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		s := r.PatternPerformance[id]
		fmt.Fprintf(w, "  pattern %-2d %-14s %d/%d (%.2f%%)\n", id, patterns.Describe(id), s.Hits, s.Total, s.HitPercentage)
	}
}
