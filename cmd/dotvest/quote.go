package main

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"dotvest/internal/amm"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	reserveIn, err := flagAmount(cmd, "reserve-in")
	if err != nil {
		return err
	}
	reserveOut, err := flagAmount(cmd, "reserve-out")
	if err != nil {
		return err
	}
	amountIn, err := flagAmount(cmd, "amount-in")
	if err != nil {
		return err
	}
	feeNumerator, _ := cmd.Flags().GetUint64("fee-numerator")

	out, err := amm.SwapOutput(reserveIn, reserveOut, amountIn, feeNumerator)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out.Dec())
	return nil
}

func flagAmount(cmd *cobra.Command, name string) (*uint256.Int, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return nil, fmt.Errorf("--%s is required", name)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, s, err)
	}
	return v, nil
}
