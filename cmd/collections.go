package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordspark/internal/catalog"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"collection", "col"},
	Short:   "Manage collections of items",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *appEnv) error {
			cols := e.cols.List()
			out := cmd.OutOrStdout()
			heading(out, fmt.Sprintf("Collections (%d)", len(cols)))
			tw := newTable(out, "ID", "NAME", "ITEMS", "ELIGIBLE", "ACTIVE", "MODE", "SYNC")
			for _, c := range cols {
				name := c.Name
				if c.Default {
					name += " (default)"
				}
				eligible := len(e.cols.Eligible(e.items, []string{c.ID}))
				row(tw, c.ID, name, len(c.ItemIDs), eligible, yesNo(c.Active), c.PracticeMode, syncLabel(c.Sync))
			}
			return tw.Flush()
		})
	},
}

var collectionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a collection's items in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *appEnv) error {
			col, ok := e.cols.Get(args[0])
			if !ok {
				return fmt.Errorf("collection %q not found", args[0])
			}
			out := cmd.OutOrStdout()
			heading(out, col.Name)
			if col.Description != "" {
				fmt.Fprintln(out, dimStyle.Render(col.Description))
			}
			tw := newTable(out, "#", "ID", "NAME", "ACTIVE")
			for i, id := range col.ItemIDs {
				it, ok := e.items.Get(id)
				if !ok {
					row(tw, i+1, id, dimStyle.Render("(removed)"), "-")
					continue
				}
				row(tw, i+1, id, it.Name, yesNo(it.Active))
			}
			return tw.Flush()
		})
	},
}

var collectionsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("collection name is required")
		}
		in := catalog.CollectionInput{Name: name}
		in.Description, _ = cmd.Flags().GetString("description")
		in.Category, _ = cmd.Flags().GetString("category")
		in.ItemIDs, _ = cmd.Flags().GetStringSlice("item")
		in.Active, _ = cmd.Flags().GetBool("active")
		in.Local, _ = cmd.Flags().GetBool("local")
		if m, _ := cmd.Flags().GetString("practice-mode"); m != "" {
			pm, ok := catalog.ParsePracticeMode(m)
			if !ok {
				return fmt.Errorf("unknown practice mode %q (want sequential, random or adaptive)", m)
			}
			in.PracticeMode = pm
		}
		return withEnv(cmd, func(e *appEnv) error {
			for _, id := range in.ItemIDs {
				if !e.items.Exists(id) {
					return fmt.Errorf("item %q not found", id)
				}
			}
			col := e.cols.Add(in)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", col.Name, col.ID)
			return nil
		})
	},
}

var collectionsRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a collection",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *appEnv) error {
			col, ok := e.cols.Get(args[0])
			if !ok {
				return fmt.Errorf("collection %q not found", args[0])
			}
			if col.Default {
				return fmt.Errorf("the default collection cannot be removed")
			}
			e.cols.Remove(col.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", col.ID)
			return nil
		})
	},
}

var collectionsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Turn a collection on or off for practice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *appEnv) error {
			if !e.cols.ToggleActive(args[0]) {
				return fmt.Errorf("collection %q not found", args[0])
			}
			col, _ := e.cols.Get(args[0])
			state := "inactive"
			if col.Active {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", col.Name, state)
			return nil
		})
	},
}

var collectionsAddItemCmd = &cobra.Command{
	Use:   "add-item <collection-id> <item-id>...",
	Short: "Append items to a collection",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *appEnv) error {
			cid := args[0]
			if _, ok := e.cols.Get(cid); !ok {
				return fmt.Errorf("collection %q not found", cid)
			}
			for _, id := range args[1:] {
				if !e.items.Exists(id) {
					return fmt.Errorf("item %q not found", id)
				}
				e.cols.AddItem(cid, id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d item(s) to %s\n", len(args)-1, cid)
			return nil
		})
	},
}

var collectionsRemoveItemCmd = &cobra.Command{
	Use:   "remove-item <collection-id> <item-id>...",
	Short: "Drop items from a collection",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *appEnv) error {
			cid := args[0]
			if _, ok := e.cols.Get(cid); !ok {
				return fmt.Errorf("collection %q not found", cid)
			}
			removed := 0
			for _, id := range args[1:] {
				if e.cols.RemoveItem(cid, id) {
					removed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s) from %s\n", removed, cid)
			return nil
		})
	},
}

var collectionsReorderCmd = &cobra.Command{
	Use:   "reorder <collection-id> <item-id>...",
	Short: "Replace a collection's item order",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *appEnv) error {
			cid := args[0]
			if _, ok := e.cols.Get(cid); !ok {
				return fmt.Errorf("collection %q not found", cid)
			}
			if !e.cols.Reorder(cid, args[1:]) {
				return fmt.Errorf("order contains duplicate item ids")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reordered %s\n", cid)
			return nil
		})
	},
}

var collectionsLocalCmd = &cobra.Command{
	Use:   "local <id>",
	Short: "Keep a collection on this device only",
	Long:  "Mark a collection local so it is never uploaded. Pass --shared to undo.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shared, _ := cmd.Flags().GetBool("shared")
		return withEnv(cmd, func(e *appEnv) error {
			if !e.cols.SetLocal(args[0], !shared) {
				return fmt.Errorf("collection %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
			return nil
		})
	},
}

func init() {
	collectionsAddCmd.Flags().String("description", "", "Description")
	collectionsAddCmd.Flags().String("category", "", "Category")
	collectionsAddCmd.Flags().StringSlice("item", nil, "Item id to include (repeatable)")
	collectionsAddCmd.Flags().Bool("active", true, "Include the collection in practice")
	collectionsAddCmd.Flags().Bool("local", false, "Keep the collection on this device only")
	collectionsAddCmd.Flags().String("practice-mode", "", "sequential, random or adaptive")

	collectionsLocalCmd.Flags().Bool("shared", false, "Make the collection shared again")

	collectionsCmd.AddCommand(
		collectionsListCmd,
		collectionsShowCmd,
		collectionsAddCmd,
		collectionsRemoveCmd,
		collectionsToggleCmd,
		collectionsAddItemCmd,
		collectionsRemoveItemCmd,
		collectionsReorderCmd,
		collectionsLocalCmd,
	)
}
