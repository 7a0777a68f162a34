package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordspark/internal/catalog"
)

var itemsCmd = &cobra.Command{
	Use:     "items",
	Aliases: []string{"item"},
	Short:   "Manage practice items",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		colID, _ := cmd.Flags().GetString("collection")
		return withEnv(cmd, func(e *appEnv) error {
			items := e.items.List()
			if colID != "" {
				col, ok := e.cols.Get(colID)
				if !ok {
					return fmt.Errorf("collection %q not found", colID)
				}
				items = filterItems(items, col.Contains)
			}

			out := cmd.OutOrStdout()
			heading(out, fmt.Sprintf("Items (%d)", len(items)))
			tw := newTable(out, "ID", "NAME", "DIFFICULTY", "ACTIVE", "ATTEMPTS", "SUCCESS", "SYNC")
			for _, it := range items {
				row(tw, it.ID, it.Name, it.Difficulty, yesNo(it.Active),
					it.Attempts(), fmt.Sprintf("%.0f%%", it.SuccessRate()*100), syncLabel(it.Sync))
			}
			return tw.Flush()
		})
	},
}

var itemsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("item name is required")
		}
		in := catalog.ItemInput{Name: name}
		in.ImageRef, _ = cmd.Flags().GetString("image")
		in.Pronunciation, _ = cmd.Flags().GetString("pronunciation")
		in.Tags, _ = cmd.Flags().GetStringSlice("tag")
		in.Category, _ = cmd.Flags().GetString("category")
		in.Notes, _ = cmd.Flags().GetString("notes")
		in.Local, _ = cmd.Flags().GetBool("local")
		if d, _ := cmd.Flags().GetString("difficulty"); d != "" {
			diff, ok := catalog.ParseDifficulty(d)
			if !ok {
				return fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", d)
			}
			in.Difficulty = diff
		}
		collections, _ := cmd.Flags().GetStringSlice("collection")

		return withEnv(cmd, func(e *appEnv) error {
			for _, cid := range collections {
				if _, ok := e.cols.Get(cid); !ok {
					return fmt.Errorf("collection %q not found", cid)
				}
			}
			it := e.items.Add(in)
			for _, cid := range collections {
				e.cols.AddItem(cid, it.ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", it.Name, it.ID)
			return nil
		})
	},
}

var itemsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an item's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := itemPatchFromFlags(cmd)
		if err != nil {
			return err
		}
		return withEnv(cmd, func(e *appEnv) error {
			if !e.items.Update(args[0], patch) {
				return fmt.Errorf("item %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
			return nil
		})
	},
}

var itemsRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove an item",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		id := args[0]
		return withEnv(cmd, func(e *appEnv) error {
			if !e.items.Exists(id) {
				return fmt.Errorf("item %q not found", id)
			}
			refs := e.cols.Referencing(id)
			if len(refs) > 0 && !force {
				return fmt.Errorf("item %q is used by collections %s; pass --force to remove it from them",
					id, strings.Join(refs, ", "))
			}
			for _, cid := range refs {
				e.cols.RemoveItem(cid, id)
			}
			e.items.Remove(id)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
			return nil
		})
	},
}

var itemsLocalCmd = &cobra.Command{
	Use:   "local <id>",
	Short: "Keep an item on this device only",
	Long:  "Mark an item local so it is never uploaded. Pass --shared to undo.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shared, _ := cmd.Flags().GetBool("shared")
		return withEnv(cmd, func(e *appEnv) error {
			if !e.items.SetLocal(args[0], !shared) {
				return fmt.Errorf("item %q not found", args[0])
			}
			state := "local"
			if shared {
				state = "shared"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], state)
			return nil
		})
	},
}

func init() {
	itemsListCmd.Flags().String("collection", "", "Only list items in this collection")

	for _, c := range []*cobra.Command{itemsAddCmd, itemsEditCmd} {
		c.Flags().String("image", "", "Image reference (path, URL or asset:<name>)")
		c.Flags().String("pronunciation", "", "Pronunciation hint")
		c.Flags().StringSlice("tag", nil, "Tag (repeatable)")
		c.Flags().String("difficulty", "", "easy, medium or hard")
		c.Flags().String("category", "", "Category")
		c.Flags().String("notes", "", "Free-form notes")
	}
	itemsAddCmd.Flags().Bool("local", false, "Keep the item on this device only")
	itemsAddCmd.Flags().StringSlice("collection", nil, "Add the item to this collection (repeatable)")

	itemsEditCmd.Flags().String("name", "", "New name")
	itemsEditCmd.Flags().Bool("active", true, "Whether the item is drawn in practice")

	itemsRemoveCmd.Flags().Bool("force", false, "Also remove the item from collections that use it")
	itemsLocalCmd.Flags().Bool("shared", false, "Make the item shared again")

	itemsCmd.AddCommand(itemsListCmd, itemsAddCmd, itemsEditCmd, itemsRemoveCmd, itemsLocalCmd)
}

// itemPatchFromFlags maps the flags the user set onto an ItemPatch.
func itemPatchFromFlags(cmd *cobra.Command) (catalog.ItemPatch, error) {
	var patch catalog.ItemPatch
	flags := cmd.Flags()
	str := func(name string, dst **string) {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = &v
		}
	}
	str("name", &patch.Name)
	str("image", &patch.ImageRef)
	str("pronunciation", &patch.Pronunciation)
	str("category", &patch.Category)
	str("notes", &patch.Notes)

	if flags.Changed("tag") {
		tags, _ := flags.GetStringSlice("tag")
		patch.Tags = &tags
	}
	if flags.Changed("difficulty") {
		d, _ := flags.GetString("difficulty")
		diff, ok := catalog.ParseDifficulty(d)
		if !ok {
			return patch, fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", d)
		}
		patch.Difficulty = &diff
	}
	if flags.Changed("active") {
		active, _ := flags.GetBool("active")
		patch.Active = &active
	}
	if patch == (catalog.ItemPatch{}) {
		return patch, fmt.Errorf("nothing to change")
	}
	return patch, nil
}

func filterItems(items []catalog.Item, keep func(id string) bool) []catalog.Item {
	out := items[:0]
	for _, it := range items {
		if keep(it.ID) {
			out = append(out, it)
		}
	}
	return out
}
