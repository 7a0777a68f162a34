package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordspark/internal/stats"
	"github.com/abhisek/wordspark/internal/ui/components"
)

const statsBarWidth = 48

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show practice statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		return withEnv(cmd, func(e *appEnv) error {
			out := cmd.OutOrStdout()
			writeLifetime(out, e.stats.Lifetime())
			fmt.Fprintln(out)

			heading(out, fmt.Sprintf("Last %d days", days))
			if sum, ok := e.stats.RangeStats(days); ok {
				fmt.Fprintf(out, "Sessions: %d   Average accuracy: %.1f%%   Words practiced: %d\n\n",
					sum.SessionCount, sum.AverageAccuracy, sum.DistinctItems)
			} else {
				fmt.Fprintln(out, dimStyle.Render("No sessions in this window."))
				fmt.Fprintln(out)
			}
			writeDaily(out, e.stats.DailyStats(days))
			return nil
		})
	},
}

var statsItemCmd = &cobra.Command{
	Use:   "item <id>",
	Short: "Show statistics for one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *appEnv) error {
			out := cmd.OutOrStdout()
			heading(out, e.itemName(args[0]))
			s, ok := e.stats.PerItemStats(args[0])
			if !ok {
				fmt.Fprintln(out, dimStyle.Render("Not practiced yet."))
				return nil
			}
			fmt.Fprintf(out, "Sessions: %d   Attempts: %d   Correct: %d\n", s.Sessions, s.Attempts, s.Correct)
			fmt.Fprintf(out, "Last practiced: %s\n", s.LastPracticedAt.Local().Format(time.DateTime))
			fmt.Fprintln(out, components.AccuracyBar("Accuracy", s.Accuracy, statsBarWidth).View())
			return nil
		})
	},
}

var statsCollectionCmd = &cobra.Command{
	Use:   "collection <id>",
	Short: "Show statistics for one collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *appEnv) error {
			out := cmd.OutOrStdout()
			title := args[0]
			if col, ok := e.cols.Get(args[0]); ok {
				title = col.Name
			}
			heading(out, title)
			s, ok := e.stats.PerCollectionStats(args[0])
			if !ok {
				fmt.Fprintln(out, dimStyle.Render("Not practiced yet."))
				return nil
			}
			fmt.Fprintf(out, "Sessions: %d   Attempts: %d   Correct: %d\n", s.Sessions, s.Attempts, s.Correct)
			fmt.Fprintf(out, "Average accuracy: %.1f%%\n", s.AverageAccuracy)
			fmt.Fprintf(out, "Last practiced: %s\n", s.LastPracticedAt.Local().Format(time.DateTime))
			return nil
		})
	},
}

var statsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withEnv(cmd, func(e *appEnv) error {
			history := e.stats.History()
			if limit > 0 && len(history) > limit {
				history = history[len(history)-limit:]
			}
			out := cmd.OutOrStdout()
			heading(out, fmt.Sprintf("Sessions (%d)", len(history)))
			tw := newTable(out, "DATE", "MODE", "CORRECT", "ATTEMPTS", "ACCURACY", "DURATION")
			for i := len(history) - 1; i >= 0; i-- {
				r := history[i]
				row(tw, r.Timestamp.Local().Format(time.DateTime), r.Mode, r.CorrectAnswers, r.TotalAttempts,
					fmt.Sprintf("%d%%", r.Accuracy), r.Duration.Round(time.Second))
			}
			return tw.Flush()
		})
	},
}

func init() {
	statsCmd.Flags().Int("days", 7, "Number of calendar days to summarize")
	statsHistoryCmd.Flags().Int("limit", 20, "Show at most this many sessions (0 for all)")
	statsCmd.AddCommand(statsItemCmd, statsCollectionCmd, statsHistoryCmd)
}

func writeLifetime(out io.Writer, lt stats.Lifetime) {
	heading(out, "Lifetime")
	fmt.Fprintf(out, "Sessions started: %d   completed: %d\n", lt.SessionsStarted, lt.SessionsCompleted)
	fmt.Fprintf(out, "Answers: %d of %d correct\n", lt.CorrectAnswers, lt.TotalAttempts)
	fmt.Fprintln(out, components.AccuracyBar("Accuracy", stats.Accuracy(lt.CorrectAnswers, lt.TotalAttempts), statsBarWidth).View())
}

func writeDaily(out io.Writer, days []stats.DayStat) {
	for _, d := range days {
		label := d.Date
		if d.Sessions == 0 {
			fmt.Fprintf(out, "%s  %s\n", label, dimStyle.Render("no practice"))
			continue
		}
		fmt.Fprintln(out, components.AccuracyBar(label, d.Accuracy, statsBarWidth).View())
	}
}
