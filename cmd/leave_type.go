package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/spf13/cobra"
)

var typeCmd = &cobra.Command{
	Use:     "type",
	Aliases: []string{"leave-type"},
	Short:   "Manage leave types",
}

var (
	typeName          string
	typeUnit          string
	typeStep          string
	typeRounding      string
	typeHoursPerDay   string
	typeTiming        string
	typeCalendarDays  bool
	typeAllowNegative bool
	typeMaxPerRequest string
)

var typeCreateCmd = &cobra.Command{
	Use:   "create <code>",
	Short: "Create a leave type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}

		lt := &leave.LeaveType{
			Code:             args[0],
			Name:             typeName,
			Unit:             leave.Unit(strings.ToUpper(typeUnit)),
			RoundingMode:     leave.RoundingMode(strings.ToUpper(typeRounding)),
			Timing:           leave.DeductionTiming(strings.ToUpper(typeTiming)),
			BusinessDaysOnly: !typeCalendarDays,
			AllowNegative:    typeAllowNegative,
			Active:           true,
		}
		if lt.RoundingStep, err = optionalDecimal(typeStep); err != nil {
			return err
		}
		if lt.HoursPerDay, err = optionalDecimal(typeHoursPerDay); err != nil {
			return err
		}
		if lt.MaxPerRequest, err = optionalDecimal(typeMaxPerRequest); err != nil {
			return err
		}

		created, err := c.CreateLeaveType(context.Background(), lt)
		if err != nil {
			return err
		}
		fmt.Printf("Leave type created: %s (%s) %s %s step %s\n",
			created.Code, created.Name, created.Unit, created.Timing, created.RoundingStep)
		return nil
	},
}

var typeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leave types",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}

		types, err := c.ListLeaveTypes(context.Background())
		if err != nil {
			return err
		}
		if len(types) == 0 {
			fmt.Println("No leave types found.")
			return nil
		}

		fmt.Printf("%-12s %-24s %-9s %-11s %6s %-8s %s\n", "CODE", "NAME", "UNIT", "TIMING", "STEP", "ROUND", "ACTIVE")
		fmt.Printf("%-12s %-24s %-9s %-11s %6s %-8s %s\n", "----", "----", "----", "------", "----", "-----", "------")
		for _, lt := range types {
			fmt.Printf("%-12s %-24s %-9s %-11s %6s %-8s %t\n",
				lt.Code, truncate(lt.Name, 22), lt.Unit, lt.Timing, lt.RoundingStep, lt.RoundingMode, lt.Active)
		}
		return nil
	},
}

var typeSetActiveCmd = &cobra.Command{
	Use:   "deactivate <code>",
	Short: "Stop accepting new requests for a leave type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLeaveTypeActive(args[0], false)
	},
}

var typeActivateCmd = &cobra.Command{
	Use:   "activate <code>",
	Short: "Accept new requests for a leave type again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLeaveTypeActive(args[0], true)
	},
}

func setLeaveTypeActive(code string, active bool) error {
	c, err := tenantClient()
	if err != nil {
		return err
	}
	lt, err := c.UpdateLeaveType(context.Background(), code, map[string]any{"active": active})
	if err != nil {
		return err
	}
	fmt.Printf("Leave type %s active=%t\n", lt.Code, lt.Active)
	return nil
}

func optionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}

func init() {
	f := typeCreateCmd.Flags()
	f.StringVar(&typeName, "name", "", "Display name (required)")
	f.StringVar(&typeUnit, "unit", "DAY", "Unit: DAY, HALF_DAY or HOUR")
	f.StringVar(&typeStep, "step", "", "Rounding step (default depends on unit)")
	f.StringVar(&typeRounding, "rounding", "NONE", "Rounding mode: NONE, UP, DOWN or NEAREST")
	f.StringVar(&typeHoursPerDay, "hours-per-day", "", "Hours in a working day (default 8)")
	f.StringVar(&typeTiming, "timing", "ON_APPLY", "Deduction timing: ON_APPLY, ON_APPROVE or NONE")
	f.BoolVar(&typeCalendarDays, "calendar-days", false, "Charge weekends and holidays too")
	f.BoolVar(&typeAllowNegative, "allow-negative", false, "Allow the balance to go negative")
	f.StringVar(&typeMaxPerRequest, "max-per-request", "", "Largest quantity a single request may take")
	typeCreateCmd.MarkFlagRequired("name")

	typeCmd.AddCommand(typeCreateCmd, typeListCmd, typeSetActiveCmd, typeActivateCmd)
	rootCmd.AddCommand(typeCmd)
}
