package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/wordspark/internal/catalog"
	"github.com/abhisek/wordspark/internal/syncledger"
)

// Transfer codes are typed by hand on the receiving device, so the alphabet
// leaves out look-alike characters.
const (
	transferAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	transferCodeLen  = 8
)

// syncBatch is the upload payload handed to a remote peer.
type syncBatch struct {
	Code        string               `json:"code"`
	CreatedAt   time.Time            `json:"created_at"`
	Items       []catalog.Item       `json:"items"`
	Collections []catalog.Collection `json:"collections"`
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inspect and settle pending sync state",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show entities waiting for upload or conflict resolution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *appEnv) error {
			out := cmd.OutOrStdout()
			pending := e.ledger.PendingUploads()
			conflicts := e.ledger.Conflicts()

			heading(out, fmt.Sprintf("Pending uploads (%d)", len(pending)))
			for _, r := range pending {
				fmt.Fprintf(out, "  %s  %s\n", r, e.refName(r))
			}
			heading(out, fmt.Sprintf("Conflicts (%d)", len(conflicts)))
			for _, r := range conflicts {
				fmt.Fprintf(out, "  %s  %s\n", errStyle.Render(r.String()), e.refName(r))
			}
			return nil
		})
	},
}

var syncExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the pending entities as an upload batch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		withCode, _ := cmd.Flags().GetBool("code")
		markSynced, _ := cmd.Flags().GetBool("mark-synced")
		return withEnv(cmd, func(e *appEnv) error {
			batch := syncBatch{
				CreatedAt:   time.Now().UTC(),
				Items:       []catalog.Item{},
				Collections: []catalog.Collection{},
			}
			if withCode {
				code, err := gonanoid.Generate(transferAlphabet, transferCodeLen)
				if err != nil {
					return fmt.Errorf("generate transfer code: %w", err)
				}
				batch.Code = code
			}
			refs := e.ledger.PendingUploads()
			for _, r := range refs {
				switch r.Kind {
				case syncledger.KindItem:
					if it, ok := e.items.Get(r.ID); ok {
						batch.Items = append(batch.Items, it)
					}
				case syncledger.KindCollection:
					if col, ok := e.cols.Get(r.ID); ok {
						batch.Collections = append(batch.Collections, col)
					}
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(batch); err != nil {
				return fmt.Errorf("encode batch: %w", err)
			}
			e.logger.Info("sync batch exported", "code", batch.Code, "entities", len(refs))

			if markSynced {
				for _, r := range refs {
					e.settle(r, false)
				}
			}
			return nil
		})
	},
}

var syncResolveCmd = &cobra.Command{
	Use:   "resolve [kind:id]...",
	Short: "Record the outcome of an upload",
	Long: `Mark entities as synced after a successful upload, or as conflicting
with --conflict. Refs look like item:<id> or collection:<id>.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		conflict, _ := cmd.Flags().GetBool("conflict")
		if !all && len(args) == 0 {
			return fmt.Errorf("name at least one ref or pass --all")
		}

		refs := make([]syncledger.Ref, 0, len(args))
		for _, a := range args {
			r, err := parseRef(a)
			if err != nil {
				return err
			}
			refs = append(refs, r)
		}

		return withEnv(cmd, func(e *appEnv) error {
			if all {
				refs = append(refs, e.ledger.PendingUploads()...)
				if !conflict {
					refs = append(refs, e.ledger.Conflicts()...)
				}
			}
			settled := 0
			for _, r := range refs {
				if e.settle(r, conflict) {
					settled++
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", r)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resolved %d of %d\n", settled, len(refs))
			return nil
		})
	},
}

func init() {
	syncExportCmd.Flags().Bool("code", false, "Key the batch with a one-time transfer code")
	syncExportCmd.Flags().Bool("mark-synced", false, "Mark the exported entities synced")
	syncResolveCmd.Flags().Bool("all", false, "Resolve every pending entity")
	syncResolveCmd.Flags().Bool("conflict", false, "Mark as conflicting instead of synced")

	syncCmd.AddCommand(syncStatusCmd, syncExportCmd, syncResolveCmd)
}

// settle marks ref synced, or conflicting when conflict is set.
func (e *appEnv) settle(r syncledger.Ref, conflict bool) bool {
	switch r.Kind {
	case syncledger.KindItem:
		if conflict {
			return e.items.MarkConflict(r.ID)
		}
		return e.items.MarkSynced(r.ID)
	case syncledger.KindCollection:
		if conflict {
			return e.cols.MarkConflict(r.ID)
		}
		return e.cols.MarkSynced(r.ID)
	}
	return false
}

func (e *appEnv) refName(r syncledger.Ref) string {
	switch r.Kind {
	case syncledger.KindItem:
		if it, ok := e.items.Get(r.ID); ok {
			return it.Name
		}
	case syncledger.KindCollection:
		if col, ok := e.cols.Get(r.ID); ok {
			return col.Name
		}
	}
	return dimStyle.Render("(removed)")
}

func parseRef(s string) (syncledger.Ref, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return syncledger.Ref{}, fmt.Errorf("invalid ref %q (want item:<id> or collection:<id>)", s)
	}
	switch k := syncledger.Kind(kind); k {
	case syncledger.KindItem, syncledger.KindCollection:
		return syncledger.Ref{Kind: k, ID: id}, nil
	}
	return syncledger.Ref{}, fmt.Errorf("unknown ref kind %q", kind)
}
