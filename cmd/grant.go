package cmd

import (
	"context"
	"fmt"

	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/spf13/cobra"
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Issue and list leave grants",
}

var (
	grantType     string
	grantQty      string
	grantIssuedOn string
	grantExpires  string
	grantSource   string
	grantNote     string
)

var grantIssueCmd = &cobra.Command{
	Use:   "issue <user>",
	Short: "Issue a grant to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}

		qty, err := optionalDecimal(grantQty)
		if err != nil {
			return err
		}
		issued, err := optionalDate(grantIssuedOn)
		if err != nil {
			return err
		}
		g := &leave.Grant{
			UserID:      args[0],
			LeaveTypeID: grantType,
			Quantity:    qty,
			IssuedOn:    issued,
			Source:      leave.GrantSource(grantSource),
			Note:        grantNote,
		}
		if grantExpires != "" {
			exp, err := leave.ParseDate(grantExpires)
			if err != nil {
				return err
			}
			g.ExpiresOn = &exp
		}

		created, err := c.CreateGrant(context.Background(), g)
		if err != nil {
			return err
		}
		fmt.Printf("Grant issued: %s %s to %s on %s\n", created.ID, created.Quantity, created.UserID, created.IssuedOn)
		return nil
	},
}

var (
	grantListUser string
	grantListType string
)

var grantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List grants",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}

		grants, err := c.ListGrants(context.Background(), grantListUser, grantListType)
		if err != nil {
			return err
		}
		if len(grants) == 0 {
			fmt.Println("No grants found.")
			return nil
		}

		fmt.Printf("%-36s %-12s %8s %-10s %-10s %s\n", "ID", "USER", "QTY", "ISSUED", "EXPIRES", "SOURCE")
		fmt.Printf("%-36s %-12s %8s %-10s %-10s %s\n", "--", "----", "---", "------", "-------", "------")
		for _, g := range grants {
			expires := "-"
			if g.ExpiresOn != nil {
				expires = g.ExpiresOn.String()
			}
			fmt.Printf("%-36s %-12s %8s %-10s %-10s %s\n", g.ID, g.UserID, g.Quantity, g.IssuedOn, expires, g.Source)
		}
		return nil
	},
}

var grantRevokeCmd = &cobra.Command{
	Use:   "revoke <id>",
	Short: "Delete a grant that has never been drawn on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		if err := c.DeleteGrant(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Grant %s revoked\n", args[0])
		return nil
	},
}

func init() {
	f := grantIssueCmd.Flags()
	f.StringVar(&grantType, "type", "", "Leave type code or ID (required)")
	f.StringVar(&grantQty, "qty", "", "Quantity in the leave type's unit (required)")
	f.StringVar(&grantIssuedOn, "issued-on", "", "Issue date (default today)")
	f.StringVar(&grantExpires, "expires-on", "", "Last day the grant can be used")
	f.StringVar(&grantSource, "source", string(leave.SourceManual), "ACCRUAL, MANUAL, CARRYOVER or ADJUSTMENT")
	f.StringVar(&grantNote, "note", "", "Free-form note")
	grantIssueCmd.MarkFlagRequired("type")
	grantIssueCmd.MarkFlagRequired("qty")

	grantListCmd.Flags().StringVar(&grantListUser, "user-id", "", "Filter by user")
	grantListCmd.Flags().StringVar(&grantListType, "type", "", "Filter by leave type")

	grantCmd.AddCommand(grantIssueCmd, grantListCmd, grantRevokeCmd)
	rootCmd.AddCommand(grantCmd)
}
