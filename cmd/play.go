package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordspark/internal/app"
	"github.com/abhisek/wordspark/internal/screen"
	"github.com/abhisek/wordspark/internal/screens/practice"
	"github.com/abhisek/wordspark/internal/screens/summary"
	"github.com/abhisek/wordspark/internal/session"
	"github.com/abhisek/wordspark/internal/speech"
	"github.com/abhisek/wordspark/internal/stats"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a practice session",
	Long: `Start a practice session over the active collections.

Modes:
  picture-word   match each word to its picture (default)
  recognition    hear a word and pick its picture
  letter-search  find the picture whose word starts with a letter
  say-aloud      name one picture at a time`,
	RunE: func(cmd *cobra.Command, args []string) error {
		collections, _ := cmd.Flags().GetStringSlice("collection")
		return runPlay(cmd, collections)
	},
}

func init() {
	playCmd.Flags().String("mode", "", "Practice mode (overrides WORDSPARK_MODE)")
	playCmd.Flags().Int("round-size", 0, "Items per round (overrides WORDSPARK_ROUND_SIZE)")
	playCmd.Flags().Bool("announce", false, "Announce prompts and feedback through the speaker")
	playCmd.Flags().StringSlice("collection", nil, "Collection ids to practice (default: all active collections)")
}

func runPlay(cmd *cobra.Command, collections []string) error {
	env, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := env.cfg.Session()
	if m, _ := cmd.Flags().GetString("mode"); m != "" {
		if cfg.Mode, err = session.ParseMode(m); err != nil {
			return err
		}
	}
	if n, _ := cmd.Flags().GetInt("round-size"); n > 0 {
		cfg.RoundSize = n
	}
	if cmd.Flags().Changed("announce") {
		cfg.Announce, _ = cmd.Flags().GetBool("announce")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("practice config: %w", err)
	}

	if len(collections) == 0 {
		collections = env.cols.ActiveIDs()
	}

	machine := session.New(cfg, env.items, env.pool(), env.stats,
		session.WithLogger(env.logger))

	env.logger.Info("session starting", "mode", cfg.Mode, "collections", collections)

	if err := app.Run(app.Options{Root: newPracticeScreen(env, machine, collections)}); err != nil {
		return err
	}

	// Ctrl+C skips the summary screen; keep whatever was practiced.
	if machine.Phase() != session.PhaseIdle {
		if rec, ok := machine.End(); ok && rec != nil {
			fmt.Printf("Session saved: %d of %d correct (%d%%)\n",
				rec.CorrectAnswers, rec.TotalAttempts, rec.Accuracy)
		}
	}

	if err := env.writer.Flush(cmd.Context()); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func newPracticeScreen(env *appEnv, machine *session.Machine, collections []string) screen.Screen {
	return practice.New(practice.Deps{
		Machine:     machine,
		Items:       env.items,
		Speaker:     speech.Logged{Logger: env.logger},
		Judge:       speech.TextJudge{},
		Collections: collections,
		Logger:      env.logger,
		Summary: func(rec *stats.Record) screen.Screen {
			return summary.New(rec, env.itemName, func() screen.Screen {
				return newPracticeScreen(env, machine, collections)
			})
		},
	})
}

func (e *appEnv) itemName(id string) string {
	if it, ok := e.items.Get(id); ok {
		return it.Name
	}
	return id
}
