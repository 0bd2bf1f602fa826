package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SahinShazi/HealthSync/internal/validate"
)

var errInvalid = errors.New("invalid")

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <kind> <value> [value]",
		Short: "Run one field validator",
		Long: fmt.Sprintf(`Check runs a single validator and prints "valid" or "invalid".
The exit status is non-zero for invalid input.

Kinds: %s`, strings.Join(validate.Kinds, ", ")),
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := validate.Check(args[0], args[1:], time.Now())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return fmt.Errorf("%s %q: %w", args[0], strings.Join(args[1:], " "), errInvalid)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
}
