// Package cli provides the command-line interface for fanqie.
package cli

import (
	"fmt"

	"github.com/liang/fanqie/internal/app"
	"github.com/liang/fanqie/internal/usecase"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupTask = "task"
	groupAI   = "ai"
)

// NewRootCommand creates the root command for fanqie.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "fanqie",
		Short: "Personal task tracker with natural-language input",
		Long: `fanqie keeps a personal task list with subtasks.

Tasks can be typed in plain language: "完成报告 高 明天" becomes a
high-priority task due tomorrow. With a model API key configured, the
text is interpreted by the language model instead, and tasks can be
broken down into AI-generated subtasks.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil {
				return nil
			}
			return prepare(cmd, c)
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupAI, Title: "Language Model:"},
	)

	for _, cmd := range []*cobra.Command{
		newAddCommand(c),
		newParseCommand(c),
		newListCommand(c),
		newDoneCommand(c),
		newStartCommand(c),
		newEditCommand(c),
		newRmCommand(c),
		newBreakdownCommand(c),
		newImportCommand(c),
	} {
		cmd.GroupID = groupTask
		root.AddCommand(cmd)
	}

	aiCmd := newAICommand(c)
	aiCmd.GroupID = groupAI
	root.AddCommand(aiCmd)

	return root
}

// prepare prints settings warnings, moves a legacy key into the keychain
// and loads the task cache.
func prepare(cmd *cobra.Command, c *app.Container) error {
	for _, w := range c.Warnings {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}

	if c.Settings != nil && c.Credentials != nil {
		out, err := c.MigrateLegacyKeyUseCase().Execute(cmd.Context())
		if err != nil {
			// Not fatal: the key stays in the settings file for next time
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: migrate api key: %v\n", err)
		} else if out.Migrated {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Moved the API key from the settings file to the system keychain.")
		}
	}

	if c.StoreInitializer != nil {
		if err := c.StoreInitializer.Initialize(); err != nil {
			return fmt.Errorf("initialize store: %w", err)
		}
	}

	_, err := c.LoadTasksUseCase().Execute(cmd.Context(), usecase.LoadTasksInput{})
	return err
}
