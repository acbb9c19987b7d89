package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/domain"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Append a task as the last child of --parent (or as a new root)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		payload, err := payloadFromFlags(cmd, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return withApp(cmd, func(app *cli.App) error {
			res, err := app.Manager.AddChild(cmd.Context(), parent, payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", res.NewID, res.Task.Title)
			printRewrites(cmd.OutOrStdout(), res.Plan)
			return nil
		})
	},
}

var insertCmd = &cobra.Command{
	Use:   "insert <after-id> <title>",
	Short: "Insert a task right after a sibling, shifting later siblings",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := payloadFromFlags(cmd, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return withApp(cmd, func(app *cli.App) error {
			res, err := app.Manager.InsertAfter(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %s %s\n", res.NewID, res.Task.Title)
			printRewrites(cmd.OutOrStdout(), res.Plan)
			return nil
		})
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task; its children take its place",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			res, err := app.Manager.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", res.RemovedID)
			printRewrites(cmd.OutOrStdout(), res.Plan)
			return nil
		})
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <id> [new-parent]",
	Short: "Move a task and its subtree under another parent (root when omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var parent string
		if len(args) == 2 {
			parent = args[1]
		}
		return withApp(cmd, func(app *cli.App) error {
			res, err := app.Manager.Move(cmd.Context(), args[0], parent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s -> %s\n", res.TaskID, res.NewID)
			printRewrites(cmd.OutOrStdout(), res.Plan)
			return nil
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Change the title, status or body of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("title") && !flags.Changed("status") && !flags.Changed("body") {
			return fmt.Errorf("nothing to change: pass --title, --status or --body")
		}
		title, _ := flags.GetString("title")
		status, _ := flags.GetString("status")
		body, _ := flags.GetString("body")
		return withApp(cmd, func(app *cli.App) error {
			t, err := app.Manager.Update(cmd.Context(), args[0], func(t *domain.Task) error {
				if flags.Changed("title") {
					t.Title = title
				}
				if flags.Changed("status") {
					t.Status = domain.Status(status)
				}
				if flags.Changed("body") {
					t.Body = body
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s [%s] %s\n", t.ID, t.Status, t.Title)
			return nil
		})
	},
}

var renumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Rebuild the tree and close every gap in sibling numbering",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			res, err := app.Manager.Renumber(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s %s %s\n", w.Kind, w.TaskID, w.Ref)
			}
			if len(res.Plan.Rewrites) == 0 {
				fmt.Fprintln(out, "Already gapless")
				return nil
			}
			printRewrites(out, res.Plan)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{addCmd, insertCmd} {
		c.Flags().String("status", string(domain.StatusPending), "Initial status")
		c.Flags().String("body", "", "Markdown body")
		rootCmd.AddCommand(c)
	}
	addCmd.Flags().StringP("parent", "p", "", "Parent id (empty for a root task)")

	setCmd.Flags().String("title", "", "New title")
	setCmd.Flags().String("status", "", "New status: pending, in_progress, blocked or done")
	setCmd.Flags().String("body", "", "New markdown body")

	rootCmd.AddCommand(rmCmd, mvCmd, setCmd, renumberCmd)
}

func payloadFromFlags(cmd *cobra.Command, title string) (domain.Task, error) {
	status, _ := cmd.Flags().GetString("status")
	body, _ := cmd.Flags().GetString("body")
	if strings.TrimSpace(title) == "" {
		return domain.Task{}, fmt.Errorf("title must not be empty")
	}
	return domain.Task{Title: title, Status: domain.Status(status), Body: body}, nil
}

func printRewrites(w io.Writer, p domain.Plan) {
	for _, r := range p.Rewrites {
		fmt.Fprintf(w, "  %s -> %s\n", r.OldID, r.NewID)
	}
}
