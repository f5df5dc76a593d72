package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petasbytes/entropy-agent/internal/entropy"
)

func newDoorCmd(a *app) *cobra.Command {
	var low, high int
	cmd := &cobra.Command{
		Use:   "door",
		Short: "Resolve one value in [low, high] and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("high") {
				high = a.cfg.Doors
			}
			r, err := a.resolver(nil)
			if err != nil {
				return err
			}
			res, err := r.Resolve(cmd.Context(), low, high)
			if errors.Is(err, entropy.ErrInvalidRange) {
				return fmt.Errorf("door: [%d, %d]: %w", low, high, err)
			}
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
		},
	}
	cmd.Flags().IntVar(&low, "low", 1, "Lowest value (inclusive)")
	cmd.Flags().IntVar(&high, "high", 5, "Highest value (inclusive); defaults to the configured door count")
	return cmd
}
