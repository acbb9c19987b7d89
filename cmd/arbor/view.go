package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
)

var treeCmd = &cobra.Command{
	Use:   "tree [id]",
	Short: "Print the task tree, or the subtree rooted at id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			ctx := cmd.Context()
			var (
				forest   domain.Forest
				warnings []domain.Warning
				err      error
			)
			if len(args) == 1 {
				forest, warnings, err = app.Manager.Subtree(ctx, args[0])
			} else {
				forest, warnings, err = app.Manager.Forest(ctx)
			}
			if err != nil {
				return err
			}
			blocked, err := blockedSet(ctx, app)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printer := tui.TreePrinter{Profile: profileFor(out), Blocked: blocked}
			if err := printer.Print(out, forest); err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s %s %s\n", w.Kind, w.TaskID, w.Ref)
			}
			return nil
		})
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tasks in id order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		if status != "" && !domain.Status(status).Valid() {
			return fmt.Errorf("%w %q", domain.ErrInvalidStatus, status)
		}
		return withApp(cmd, func(app *cli.App) error {
			tasks, err := app.Manager.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			var filtered []domain.Task
			for _, t := range tasks {
				if status == "" || string(t.Status) == status {
					filtered = append(filtered, t)
				}
			}
			printTasks(cmd.OutOrStdout(), filtered)
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task with its ancestors, blockers and rendered body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			ctx := cmd.Context()
			t, err := app.Manager.Get(ctx, args[0])
			if err != nil {
				return err
			}
			chain, err := app.Manager.Ancestors(ctx, t.ID)
			if err != nil {
				return err
			}
			blockers, err := app.Manager.Blockers(ctx, t.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printer := tui.TreePrinter{Profile: profileFor(out)}
			fmt.Fprintln(out, printer.Line(t))
			for _, a := range chain {
				fmt.Fprintf(out, "  in %s %s\n", a.ID, a.Title)
			}
			for _, b := range blockers {
				fmt.Fprintf(out, "  waiting on %s %s [%s]\n", b.ID, b.Title, b.Status)
			}
			if t.Body == "" {
				return nil
			}

			tty, width := terminal(out)
			render, err := tui.NewRenderer(tty, width)
			if err != nil {
				return err
			}
			body, err := render(t.Body)
			if err != nil {
				return err
			}
			fmt.Fprint(out, body)
			return nil
		})
	},
}

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <id>",
	Short: "List the parent chain of a task, root first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			chain, err := app.Manager.Ancestors(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), chain)
			return nil
		})
	},
}

var descendantsCmd = &cobra.Command{
	Use:   "descendants <id>",
	Short: "List every task below id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			tasks, err := app.Manager.Descendants(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		})
	},
}

func init() {
	lsCmd.Flags().String("status", "", "Only list tasks with this status")
	rootCmd.AddCommand(treeCmd, lsCmd, showCmd, ancestorsCmd, descendantsCmd)
}

func printTasks(w io.Writer, tasks []domain.Task) {
	printer := tui.TreePrinter{Profile: profileFor(w)}
	for _, t := range tasks {
		fmt.Fprintln(w, printer.Line(t))
	}
}

// blockedSet returns the ids that depend on a task which is not done.
func blockedSet(ctx context.Context, app *cli.App) (map[string]bool, error) {
	deps, err := app.Manager.Dependencies(ctx)
	if err != nil || len(deps) == 0 {
		return nil, err
	}
	tasks, err := app.Manager.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	status := make(map[string]domain.Status, len(tasks))
	for _, t := range tasks {
		status[t.ID] = t.Status
	}
	blocked := map[string]bool{}
	for _, d := range deps {
		if s, ok := status[d.DependsOnID]; ok && s != domain.StatusDone {
			blocked[d.TaskID] = true
		}
	}
	return blocked, nil
}

// terminal reports whether w is a terminal and, if so, its width.
func terminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return true, 80
	}
	return true, width
}

// profileFor picks colors for terminals and plain text for everything else.
func profileFor(w io.Writer) termenv.Profile {
	if tty, _ := terminal(w); tty {
		return termenv.EnvColorProfile()
	}
	return termenv.Ascii
}
