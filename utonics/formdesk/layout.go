package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/G-Node/formdesk/formdesk/db"
	"github.com/G-Node/formdesk/formdesk/layout"
	"github.com/spf13/cobra"
)

// layoutOp changes the layout of a form; the result is saved whole.
type layoutOp func(f *db.Form, args []string) (layout.Layout, error)

func newLayoutCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show and edit the layout of a form",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <form>",
		Short: "Print the effective layout as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			f, err := conn.GetForm(context.Background(), args[0], "")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), f.Layout)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <form>",
		Short: "Discard the saved layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			ctx := context.Background()
			f, err := conn.GetForm(ctx, args[0], "")
			if err != nil {
				return err
			}
			return conn.ResetLayout(ctx, f.ID)
		},
	})

	cmd.AddCommand(layoutCmd(opts, "move <form> <field-id> <up|down>", "Move a field to the previous or next group", 3,
		func(f *db.Form, args []string) (layout.Layout, error) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return layout.Layout{}, fmt.Errorf("invalid field id %q", args[0])
			}
			switch args[1] {
			case "up":
				return f.Layout.MoveField(id, layout.Up), nil
			case "down":
				return f.Layout.MoveField(id, layout.Down), nil
			}
			return layout.Layout{}, fmt.Errorf("direction must be up or down, not %q", args[1])
		}))

	cmd.AddCommand(layoutCmd(opts, "reorder <form> <group-id> <from> <to>", "Move a field to another position in its group", 4,
		func(f *db.Form, args []string) (layout.Layout, error) {
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return layout.Layout{}, fmt.Errorf("invalid position %q", args[1])
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return layout.Layout{}, fmt.Errorf("invalid position %q", args[2])
			}
			return f.Layout.Reorder(args[0], from, to), nil
		}))

	var columns, spacing int
	addGroup := layoutCmd(opts, "add-group <form> [title]", "Append an empty group", -2,
		func(f *db.Form, args []string) (layout.Layout, error) {
			title := ""
			if len(args) > 0 {
				title = args[0]
			}
			return f.Layout.AddGroup(title, columns, spacing)
		})
	addGroup.Flags().IntVar(&columns, "columns", 1, "number of columns")
	addGroup.Flags().IntVar(&spacing, "spacing", layout.DefaultSpacing, "spacing between fields")
	cmd.AddCommand(addGroup)

	var (
		title      string
		updColumns int
		updSpacing int
	)
	updateGroup := layoutCmd(opts, "update-group <form> <group-id>", "Change the title, columns or spacing of a group", 2,
		func(f *db.Form, args []string) (layout.Layout, error) {
			g, ok := f.Layout.Group(args[0])
			if !ok {
				return layout.Layout{}, fmt.Errorf("no group %q in form %q", args[0], f.Name)
			}
			if title != "" {
				g.Title = title
			}
			if updColumns > 0 {
				g.Columns = updColumns
			}
			if updSpacing >= 0 {
				g.Spacing = updSpacing
			}
			return f.Layout.UpdateGroup(g.ID, g.Title, g.Columns, g.Spacing)
		})
	updateGroup.Flags().StringVar(&title, "title", "", "new title")
	updateGroup.Flags().IntVar(&updColumns, "columns", 0, "new number of columns")
	updateGroup.Flags().IntVar(&updSpacing, "spacing", -1, "new spacing")
	cmd.AddCommand(updateGroup)

	cmd.AddCommand(layoutCmd(opts, "delete-group <form> <group-id>", "Delete a group and unassign its fields", 2,
		func(f *db.Form, args []string) (layout.Layout, error) {
			return f.Layout.DeleteGroup(args[0])
		}))

	return cmd
}

// layoutCmd builds a command that loads the form named by the first
// argument, applies op to the remaining arguments and saves the result.
// A negative nargs accepts between 1 and -nargs arguments.
func layoutCmd(opts *options, use, short string, nargs int, op layoutOp) *cobra.Command {
	argsCheck := cobra.ExactArgs(nargs)
	if nargs < 0 {
		argsCheck = cobra.RangeArgs(1, -nargs)
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  argsCheck,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			ctx := context.Background()
			f, err := conn.GetForm(ctx, args[0], "")
			if err != nil {
				return err
			}
			l, err := op(f, args[1:])
			if err != nil {
				return err
			}
			if err := conn.SaveLayout(ctx, f.ID, l); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), l)
		},
	}
}
