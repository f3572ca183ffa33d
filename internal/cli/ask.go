// internal/cli/ask.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"safari-connect/internal/models"
)

func NewAskCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Classify a message and print the reply",
		Long: `Run one message through the chat responder and print the category
and reply, exactly as the chat widget would receive them.

Example:
  safari-connect ask "how much for two weeks?"
  safari-connect ask --format json does it work on zanzibar`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(rootOpts, strings.Join(args, " "), cmd)
		},
	}

	return cmd
}

func runAsk(opts *RootOptions, text string, cmd *cobra.Command) error {
	resp, err := buildResponder(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load replies", err)
	}

	reply := resp.Reply(cmd.Context(), text)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Print(models.ChatResponse{
		Category:      reply.Category.String(),
		Reply:         reply.Text,
		Source:        reply.Source,
		TypingDelayMs: reply.TypingDelay.Milliseconds(),
	}, fmt.Sprintf("[%s]\n%s", reply.Category, reply.Text))
}
