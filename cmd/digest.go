package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/regwatch/internal/llm"
)

// newDigestCmd creates the 'digest' subcommand.
func newDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Prints a model-written summary of recent regulatory news",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			gen := appInstance.GetDigest()
			if gen == nil {
				return errors.New("digest requires gemini.api_key (or REGWATCH_GEMINI_API_KEY)")
			}
			text, err := llm.Digest(cmd.Context(), gen)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
