package cmd

import (
	"context"
	"fmt"

	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/spf13/cobra"
)

var holidayCmd = &cobra.Command{
	Use:   "holiday",
	Short: "Manage the tenant's public holidays",
}

var holidayName string

var holidayAddCmd = &cobra.Command{
	Use:   "add <date>",
	Short: "Add a holiday",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		d, err := leave.ParseDate(args[0])
		if err != nil {
			return err
		}
		h, err := c.AddHoliday(context.Background(), d, holidayName)
		if err != nil {
			return err
		}
		fmt.Printf("Holiday added: %s %s\n", h.Date, h.Name)
		return nil
	},
}

var holidayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List holidays",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		holidays, err := c.ListHolidays(context.Background())
		if err != nil {
			return err
		}
		if len(holidays) == 0 {
			fmt.Println("No holidays found.")
			return nil
		}
		for _, h := range holidays {
			fmt.Printf("%-10s %-9s %s\n", h.Date, h.Date.Weekday().String()[:3], h.Name)
		}
		return nil
	},
}

var holidayRemoveCmd = &cobra.Command{
	Use:   "remove <date>",
	Short: "Remove a holiday",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		d, err := leave.ParseDate(args[0])
		if err != nil {
			return err
		}
		if err := c.DeleteHoliday(context.Background(), d); err != nil {
			return err
		}
		fmt.Printf("Holiday %s removed\n", d)
		return nil
	},
}

var blackoutCmd = &cobra.Command{
	Use:   "blackout",
	Short: "Manage periods when leave cannot be taken",
}

var (
	blackoutType   string
	blackoutReason string
)

var blackoutAddCmd = &cobra.Command{
	Use:   "add <start> <end>",
	Short: "Block leave between two dates (inclusive)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		start, err := leave.ParseDate(args[0])
		if err != nil {
			return err
		}
		end, err := leave.ParseDate(args[1])
		if err != nil {
			return err
		}
		b, err := c.AddBlackout(context.Background(), &leave.Blackout{
			LeaveTypeID: blackoutType,
			Start:       start,
			End:         end,
			Reason:      blackoutReason,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Blackout added: %s %s..%s\n", b.ID, b.Start, b.End)
		return nil
	},
}

var blackoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blackouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		blackouts, err := c.ListBlackouts(context.Background())
		if err != nil {
			return err
		}
		if len(blackouts) == 0 {
			fmt.Println("No blackouts found.")
			return nil
		}

		fmt.Printf("%-36s %-10s %-10s %-12s %s\n", "ID", "START", "END", "TYPE", "REASON")
		fmt.Printf("%-36s %-10s %-10s %-12s %s\n", "--", "-----", "---", "----", "------")
		for _, b := range blackouts {
			typ := b.LeaveTypeID
			if typ == "" {
				typ = "(all)"
			}
			fmt.Printf("%-36s %-10s %-10s %-12s %s\n", b.ID, b.Start, b.End, truncate(typ, 10), b.Reason)
		}
		return nil
	},
}

var blackoutRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a blackout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		if err := c.DeleteBlackout(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Blackout %s removed\n", args[0])
		return nil
	},
}

func init() {
	holidayAddCmd.Flags().StringVar(&holidayName, "name", "", "Holiday name (required)")
	holidayAddCmd.MarkFlagRequired("name")
	holidayCmd.AddCommand(holidayAddCmd, holidayListCmd, holidayRemoveCmd)

	blackoutAddCmd.Flags().StringVar(&blackoutType, "type", "", "Restrict to one leave type (default all)")
	blackoutAddCmd.Flags().StringVar(&blackoutReason, "reason", "", "Why leave is blocked (required)")
	blackoutAddCmd.MarkFlagRequired("reason")
	blackoutCmd.AddCommand(blackoutAddCmd, blackoutListCmd, blackoutRemoveCmd)

	rootCmd.AddCommand(holidayCmd, blackoutCmd)
}
