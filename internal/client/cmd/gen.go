package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/firstindiacredit-Git/cred/internal/client/passgen"
)

func newGenCmd() *cobra.Command {
	opts := passgen.DefaultOptions()
	var toClipboard bool
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a random password",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passgen.Generate(opts)
			if err != nil {
				return err
			}
			strength := passgen.Score(password)
			if toClipboard {
				if err := clipboard.WriteAll(password); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Copied to clipboard (%s)\n", strength.Label)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nStrength: %s (%d/4)\n", password, strength.Label, strength.Score)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Length, "length", "l", opts.Length, "Password length")
	cmd.Flags().BoolVar(&opts.Upper, "upper", opts.Upper, "Include uppercase letters")
	cmd.Flags().BoolVar(&opts.Lower, "lower", opts.Lower, "Include lowercase letters")
	cmd.Flags().BoolVar(&opts.Digits, "digits", opts.Digits, "Include digits")
	cmd.Flags().BoolVar(&opts.Symbols, "symbols", opts.Symbols, "Include symbols")
	cmd.Flags().BoolVarP(&toClipboard, "copy", "c", false, "Copy to clipboard instead of printing")
	return cmd
}
