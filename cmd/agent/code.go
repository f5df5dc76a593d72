package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/petasbytes/entropy-agent/tools"
)

func newCodeCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "code A B",
		Short: "Multiply two integers and print the keypad code as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in tools.SecurityCodeInput
			var err error
			if in.A, err = strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("code: first factor: %w", err)
			}
			if in.B, err = strconv.ParseInt(args[1], 10, 64); err != nil {
				return fmt.Errorf("code: second factor: %w", err)
			}
			out, err := tools.CalculateSecurityCode(in)
			if err != nil {
				return fmt.Errorf("code: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "{\"code\":%d}\n", out.Code)
			return err
		},
	}
}
