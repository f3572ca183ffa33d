// internal/cli/chat.go
package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"safari-connect/internal/tui"
)

func NewChatCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chat",
		Short:         "Chat with the responder in the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := buildResponder(rootOpts.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load replies", err)
			}
			return tui.Run(resp,
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithContext(cmd.Context()),
			)
		},
	}

	return cmd
}
