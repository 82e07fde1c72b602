package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/spf13/cobra"
)

var (
	balanceType string
	balanceAsOf string
)

var balanceCmd = &cobra.Command{
	Use:   "balance [user]",
	Short: "Show leave balances (default the acting --user)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		userID := flagUser
		if len(args) == 1 {
			userID = args[0]
		}
		if userID == "" {
			return fmt.Errorf("user is required")
		}
		asOf, err := optionalDate(balanceAsOf)
		if err != nil {
			return err
		}

		ctx := context.Background()
		if balanceType != "" {
			b, err := c.GetBalance(ctx, userID, balanceType, asOf)
			if err != nil {
				return err
			}
			printBalance(b, true)
			return nil
		}

		balances, err := c.ListBalances(ctx, userID, asOf)
		if err != nil {
			return err
		}
		if len(balances) == 0 {
			fmt.Println("No tracked leave types.")
			return nil
		}
		for i := range balances {
			printBalance(&balances[i], false)
		}
		return nil
	},
}

func printBalance(b *leave.Balance, detail bool) {
	w := 60
	fmt.Println()
	fmt.Printf("  %s  %s as of %s\n", b.UserID, b.LeaveTypeID, b.AsOf)
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	fmt.Printf("  %-*s%12s\n", w-16, "Granted", b.Granted)
	fmt.Printf("  %-*s%12s\n", w-16, "Consumed", b.Consumed)
	fmt.Printf("  %-*s%12s\n", w-16, "Held", b.Held)
	if !b.Overdraft.IsZero() {
		fmt.Printf("  %-*s%12s\n", w-16, "Overdraft", b.Overdraft)
	}
	if !b.Expired.IsZero() {
		fmt.Printf("  %-*s%12s\n", w-16, "Expired", b.Expired)
	}
	fmt.Printf("  %*s%s\n", w-16, "", "────────────")
	fmt.Printf("  %-*s%12s %s\n", w-16, "Available", b.Available, leave.UnitLabel(b.Unit))

	if !detail || len(b.Grants) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("  %-10s %-10s %8s %8s %8s %9s\n", "ISSUED", "EXPIRES", "QTY", "HELD", "USED", "REMAINING")
	for _, g := range b.Grants {
		expires := "-"
		if g.ExpiresOn != nil {
			expires = g.ExpiresOn.String()
		}
		remaining := g.Remaining.String()
		if g.Expired {
			remaining = "expired"
		}
		fmt.Printf("  %-10s %-10s %8s %8s %8s %9s\n", g.IssuedOn, expires, g.Quantity, g.Held, g.Consumed, remaining)
	}
}

func init() {
	balanceCmd.Flags().StringVar(&balanceType, "type", "", "Show one leave type with per-grant detail")
	balanceCmd.Flags().StringVar(&balanceAsOf, "as-of", "", "Balance date (default today)")
	rootCmd.AddCommand(balanceCmd)
}
