package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/liang/fanqie/internal/app"
	"github.com/liang/fanqie/internal/usecase"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newAICommand creates the ai command group for language model settings.
func newAICommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Configure the language model",
		Long: `Configure the language model used for text interpretation and task breakdown.

The API key is kept in the system keychain, never in the settings file.
Without a key every command still works; text is interpreted by the
built-in keyword rules and breakdown is unavailable.`,
	}

	cmd.AddCommand(
		newAIStatusCommand(c),
		newAISetCommand(c),
		newAIClearCommand(c),
	)

	return cmd
}

func newAIStatusCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the model configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ShowModelStatusUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}
			printModelStatus(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newAISetCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Key   string
		Model string
	}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API key and model name",
		Long: `Store the API key and model name.

Pass --key - to type the key at a prompt without echo (or pipe it on stdin).
An empty key removes the stored one.

Examples:
  fanqie ai set --key -
  fanqie ai set --model qwen-plus`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keyChanged := cmd.Flags().Changed("key")
			if !keyChanged && opts.Model == "" {
				return errors.New("nothing to set: pass --key and/or --model")
			}

			in := usecase.ConfigureModelInput{Model: opts.Model}
			if keyChanged {
				key := opts.Key
				if key == "-" {
					var err error
					key, err = readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "API key: ")
					if err != nil {
						return err
					}
				}
				in.APIKey = &key
			}

			out, err := c.ConfigureModelUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			printModelStatus(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", `API key ("-" to prompt)`)
	cmd.Flags().StringVar(&opts.Model, "model", "", "Model name")

	return cmd
}

func newAIClearCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.ClearModelKeyUseCase().Execute(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Removed the API key from the system keychain.")
			return nil
		},
	}
}

func printModelStatus(w io.Writer, out *usecase.ShowModelStatusOutput) {
	key := styleOverdue.Render("not set")
	if out.HasAPIKey {
		key = styleAI.Render("stored in keychain")
	}
	_, _ = fmt.Fprintf(w, "Model:    %s\n", out.Model)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", out.Endpoint)
	_, _ = fmt.Fprintf(w, "API key:  %s\n", key)
}

// readSecret reads one line from in. When in is a terminal the prompt is
// shown on prompt and the input is not echoed.
func readSecret(in io.Reader, prompt io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(prompt, label)
		secret, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read api key: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read api key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
