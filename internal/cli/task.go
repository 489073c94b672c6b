package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/liang/fanqie/internal/app"
	"github.com/liang/fanqie/internal/domain"
	"github.com/liang/fanqie/internal/usecase"
	"github.com/spf13/cobra"
)

// newAddCommand creates the add command for creating tasks.
func newAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Due      string
		Parent   string
		Category string
		Priority int
	}

	cmd := &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a task from free-form text",
		Long: `Add a task from free-form text.

Priority words (高, 中, 低) and dates (今天, 明天, 后天) in the text are
recognised and override --priority and --due. With a model API key
configured the language model interprets the text instead; if the model
call fails the keyword rules are used without an error.

Examples:
  # High priority, due tomorrow
  fanqie add 完成报告 高 明天

  # Subtask of an existing task (ID prefix is enough)
  fanqie add --parent 3f2a 收集数据`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.AddTaskInput{
				Text:     strings.Join(args, " "),
				Category: opts.Category,
			}
			if opts.Priority != 0 {
				in.Priority = domain.PriorityPtr(domain.Priority(opts.Priority))
			}
			if opts.Due != "" {
				due, err := domain.ParseDate(opts.Due)
				if err != nil {
					return err
				}
				in.DueDate = &due
			}
			if opts.Parent != "" {
				parent, err := c.Tree.Resolve(opts.Parent)
				if err != nil {
					return fmt.Errorf("parent %q: %w", opts.Parent, err)
				}
				in.ParentID = &parent.ID
			}

			out, err := c.AddTaskUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", shortID(out.Task.ID), describeTask(out.Task))
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Priority, "priority", "p", 0, "Priority: 1 high, 2 medium, 3 low (default 2)")
	cmd.Flags().StringVar(&opts.Due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Parent, "parent", "", "Parent task ID or prefix")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Category")

	return cmd
}

// newParseCommand creates the parse command for previewing an interpretation.
func newParseCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text>...",
		Short: "Show how text would be interpreted, without adding a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.PreviewIntentUseCase().Execute(cmd.Context(), usecase.PreviewIntentInput{
				Text: strings.Join(args, " "),
			})
			if out != nil {
				printIntent(cmd.OutOrStdout(), out)
			}
			return err
		},
	}
}

func printIntent(w io.Writer, out *usecase.PreviewIntentOutput) {
	intent := out.Intent
	_, _ = fmt.Fprintf(w, "Title:    %s\n", intent.Title)
	if intent.Priority != nil {
		_, _ = fmt.Fprintf(w, "Priority: %s\n", priorityLabel(*intent.Priority))
	} else {
		_, _ = fmt.Fprintln(w, "Priority: -")
	}
	if intent.DueDate != nil {
		_, _ = fmt.Fprintf(w, "Due:      %s\n", intent.DueDate)
	} else {
		_, _ = fmt.Fprintln(w, "Due:      -")
	}
	_, _ = fmt.Fprintf(w, "Source:   %s\n", out.Source)
}

// newListCommand creates the list command for listing tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Filter string
		Format string
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks with their subtasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := domain.ParseFilterKey(opts.Filter)
			if err != nil {
				return err
			}
			out, err := c.ListTasksUseCase().Execute(cmd.Context(), usecase.ListTasksInput{Filter: key})
			if err != nil {
				return err
			}
			return printList(cmd.OutOrStdout(), out, opts.Format, domain.DateOf(c.Clock.Now()))
		},
	}

	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "all", "Filter: all, today, completed")
	cmd.Flags().StringVarP(&opts.Format, "format", "o", formatText, "Output format: text, json, yaml")

	return cmd
}

// newDoneCommand creates the done command for toggling completion.
func newDoneCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed, or reopen a completed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.Tree.Resolve(args[0])
			if err != nil {
				return err
			}
			out, err := c.ToggleTaskUseCase().Execute(cmd.Context(), usecase.ToggleTaskInput{TaskID: task.ID})
			if err != nil {
				return err
			}

			verb := "Completed"
			if !out.Task.IsCompleted() {
				verb = "Reopened"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s task %s: %s\n", verb, shortID(out.Task.ID), out.Task.Title)
			return nil
		},
	}
}

// newStartCommand creates the start command for marking a task in progress.
func newStartCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Mark a task in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.Tree.Resolve(args[0])
			if err != nil {
				return err
			}
			out, err := c.SetStatusUseCase().Execute(cmd.Context(), usecase.SetStatusInput{
				TaskID: task.ID,
				Status: domain.StatusInProgress,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Started task %s: %s (was %s)\n",
				shortID(out.Task.ID), out.Task.Title, out.Previous.Display())
			return nil
		},
	}
}

// newEditCommand creates the edit command for changing task fields.
func newEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title    string
		Due      string
		Priority int
		ClearDue bool
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task's title, priority or due date",
		Long: `Edit a task's title, priority or due date.

An empty --title saves the placeholder title "未命名任务".

Examples:
  fanqie edit 3f2a --title "完成季度报告" --priority 1
  fanqie edit 3f2a --due 2026-10-20
  fanqie edit 3f2a --clear-due`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.Tree.Resolve(args[0])
			if err != nil {
				return err
			}

			in := usecase.EditTaskInput{TaskID: task.ID, ClearDueDate: opts.ClearDue}
			if cmd.Flags().Changed("title") {
				in.Title = &opts.Title
			}
			if cmd.Flags().Changed("priority") {
				in.Priority = domain.PriorityPtr(domain.Priority(opts.Priority))
			}
			if cmd.Flags().Changed("due") {
				if opts.ClearDue {
					return errors.New("cannot use --due together with --clear-due")
				}
				due, err := domain.ParseDate(opts.Due)
				if err != nil {
					return err
				}
				in.DueDate = &due
			}

			out, err := c.EditTaskUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s\n", shortID(out.Task.ID), describeTask(out.Task))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "New title")
	cmd.Flags().IntVarP(&opts.Priority, "priority", "p", 0, "New priority: 1 high, 2 medium, 3 low")
	cmd.Flags().StringVar(&opts.Due, "due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.ClearDue, "clear-due", false, "Remove the due date")

	return cmd
}

// newRmCommand creates the rm command for deleting tasks.
func newRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task and all of its subtasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.Tree.Resolve(args[0])
			if err != nil {
				return err
			}
			out, err := c.DeleteTaskUseCase().Execute(cmd.Context(), usecase.DeleteTaskInput{TaskID: task.ID})
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Deleted task %s: %s", shortID(task.ID), task.Title)
			if n := len(out.DeletedIDs) - 1; n > 0 {
				msg += fmt.Sprintf(" (and %d subtask(s))", n)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

// newBreakdownCommand creates the breakdown command for AI decomposition.
func newBreakdownCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "breakdown <id>",
		Short: "Split a task into AI-generated subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.Tree.Resolve(args[0])
			if err != nil {
				return err
			}

			out, err := c.DecomposeTaskUseCase().Execute(cmd.Context(), usecase.DecomposeTaskInput{TaskID: task.ID})
			if errors.Is(err, domain.ErrDecompositionUnavailable) {
				return fmt.Errorf("%w\nRun 'fanqie ai set' to configure the API key", err)
			}
			if out != nil {
				w := cmd.OutOrStdout()
				for _, sub := range out.Created {
					_, _ = fmt.Fprintf(w, "Created subtask %s: %s\n", shortID(sub.ID), describeTask(sub))
				}
				for _, failed := range out.Failed {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Failed to create %q: %v\n", failed.Draft.Title, failed.Err)
				}
			}
			return err
		},
	}
}

// newImportCommand creates the import command for bulk creation.
func newImportCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create tasks from a YAML file",
		Long: `Create tasks from a YAML file ("-" reads standard input).

File format:
  - title: 写论文
    priority: 1
    due: 2026-10-20
    subtasks:
      - title: 查资料
      - title: 写初稿
  - title: 买菜`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			out, err := c.ImportTasksUseCase().Execute(cmd.Context(), usecase.ImportTasksInput{Content: string(content)})
			if out != nil {
				for _, task := range out.Created {
					indent := ""
					if !task.IsTopLevel() {
						indent = "  "
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%sCreated task %s: %s\n", indent, shortID(task.ID), task.Title)
				}
			}
			return err
		},
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return content, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return content, nil
}
