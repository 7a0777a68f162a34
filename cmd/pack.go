package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordspark/internal/catalogpack"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import items and collections from a catalog pack",
	Long:  "Import a JSON catalog pack. Use - to read from stdin. Items whose name already exists are reused.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		local, _ := cmd.Flags().GetBool("local")

		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open pack: %w", err)
			}
			defer f.Close()
			r = f
		}
		pack, err := catalogpack.Parse(r)
		if err != nil {
			return err
		}

		return withEnv(cmd, func(e *appEnv) error {
			res := catalogpack.Import(pack, e.items, e.cols, local)
			e.logger.Info("pack imported",
				"items_added", res.ItemsAdded,
				"items_reused", res.ItemsReused,
				"collections_added", res.CollectionsAdded)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new item(s), reused %d, added %d collection(s)\n",
				res.ItemsAdded, res.ItemsReused, res.CollectionsAdded)
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export items and collections as a catalog pack",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		includeLocal, _ := cmd.Flags().GetBool("include-local")

		return withEnv(cmd, func(e *appEnv) error {
			pack := catalogpack.Export(e.items, e.cols, catalogpack.ExportOptions{
				IncludeLocal: includeLocal,
				Now:          time.Now(),
			})

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create pack file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := catalogpack.Write(w, pack); err != nil {
				return err
			}
			if outPath != "" && outPath != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d item(s) and %d collection(s) to %s\n",
					len(pack.Items), len(pack.Collections), outPath)
			}
			return nil
		})
	},
}

func init() {
	importCmd.Flags().Bool("local", false, "Keep imported entities on this device only")
	exportCmd.Flags().StringP("out", "o", "", "Write the pack to this file instead of stdout")
	exportCmd.Flags().Bool("include-local", false, "Include entities marked local-only")
}
