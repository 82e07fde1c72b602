package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/simonvc/leaveledger/internal/client"
	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:     "request",
	Aliases: []string{"req"},
	Short:   "Submit and decide leave requests",
}

var (
	reqFor    string
	reqType   string
	reqQty    string
	reqReason string
)

func buildSubmit(args []string) (client.SubmitRequest, error) {
	start, err := leave.ParseDate(args[0])
	if err != nil {
		return client.SubmitRequest{}, err
	}
	end := start
	if len(args) > 1 {
		if end, err = leave.ParseDate(args[1]); err != nil {
			return client.SubmitRequest{}, err
		}
	}
	qty, err := optionalDecimal(reqQty)
	if err != nil {
		return client.SubmitRequest{}, err
	}
	return client.SubmitRequest{
		UserID:      reqFor,
		LeaveTypeID: reqType,
		Start:       start,
		End:         end,
		Quantity:    qty,
		Reason:      reqReason,
	}, nil
}

var requestSubmitCmd = &cobra.Command{
	Use:   "submit <start> [end]",
	Short: "Submit a leave request",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		body, err := buildSubmit(args)
		if err != nil {
			return err
		}

		req, err := c.SubmitRequest(context.Background(), body)
		if err != nil {
			return err
		}
		fmt.Printf("Request submitted: %s %s %s..%s (%s)\n", req.ID, req.Quantity, req.Start, req.End, req.Status)
		printEntries(req.Entries)
		return nil
	},
}

var requestQuoteCmd = &cobra.Command{
	Use:   "quote <start> [end]",
	Short: "Preview the charge and allocation of a request without submitting it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		body, err := buildSubmit(args)
		if err != nil {
			return err
		}

		q, err := c.QuoteRequest(context.Background(), body)
		if err != nil {
			return err
		}
		fmt.Printf("%s..%s: %d chargeable days, %s of %s %s\n",
			q.Start, q.End, q.ChargeableDays, q.Quantity, q.Capacity, leave.UnitLabel(q.Unit))
		for _, a := range q.Allocations {
			grant := a.GrantID
			if grant == "" {
				grant = "(overdraft)"
			}
			fmt.Printf("  %-36s %8s\n", grant, a.Quantity)
		}
		return nil
	},
}

var (
	reqListStatus string
	reqListLimit  int
)

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leave requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}

		reqs, err := c.ListRequests(context.Background(), client.RequestFilter{
			UserID:    reqFor,
			LeaveType: reqType,
			Status:    leave.RequestStatus(strings.ToUpper(reqListStatus)),
			Limit:     reqListLimit,
		})
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			fmt.Println("No requests found.")
			return nil
		}

		fmt.Printf("%-36s %-12s %-10s %-10s %6s %s\n", "ID", "USER", "START", "END", "QTY", "STATUS")
		fmt.Printf("%-36s %-12s %-10s %-10s %6s %s\n", "--", "----", "-----", "---", "---", "------")
		for _, r := range reqs {
			fmt.Printf("%-36s %-12s %-10s %-10s %6s %s\n", r.ID, r.UserID, r.Start, r.End, r.Quantity, r.Status)
		}
		return nil
	},
}

var requestGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a request and its ledger entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		r, err := c.GetRequest(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Request:  %s\n", r.ID)
		fmt.Printf("User:     %s\n", r.UserID)
		fmt.Printf("Type:     %s\n", r.LeaveTypeID)
		fmt.Printf("Dates:    %s..%s\n", r.Start, r.End)
		fmt.Printf("Quantity: %s\n", r.Quantity)
		fmt.Printf("Status:   %s\n", r.Status)
		if r.Reason != "" {
			fmt.Printf("Reason:   %s\n", r.Reason)
		}
		if r.DecidedBy != "" {
			fmt.Printf("Decided:  %s %s\n", r.DecidedBy, r.DecisionNote)
		}
		printEntries(r.Entries)
		return nil
	},
}

var reqNote string

type decision func(c *client.Client, ctx context.Context, id, note string) (*leave.Request, error)

func decisionCmd(use, short string, fn decision) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := tenantClient()
			if err != nil {
				return err
			}
			r, err := fn(c, context.Background(), args[0], reqNote)
			if err != nil {
				return err
			}
			fmt.Printf("Request %s is now %s\n", r.ID, r.Status)
			return nil
		},
	}
}

func printEntries(entries []leave.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("  %-8s %-36s %8s\n", "KIND", "GRANT", "QTY")
	for _, e := range entries {
		grant := e.GrantID
		if grant == "" {
			grant = "(overdraft)"
		}
		fmt.Printf("  %-8s %-36s %8s\n", e.Kind, grant, e.Quantity)
	}
}

func init() {
	requestCmd.PersistentFlags().StringVar(&reqFor, "for", "", "Subject user (default the acting --user)")
	requestCmd.PersistentFlags().StringVar(&reqType, "type", "", "Leave type code or ID")
	requestCmd.PersistentFlags().StringVar(&reqNote, "note", "", "Decision note")

	requestSubmitCmd.Flags().StringVar(&reqQty, "qty", "", "Quantity (default the whole range)")
	requestSubmitCmd.Flags().StringVar(&reqReason, "reason", "", "Reason shown to approvers")
	requestQuoteCmd.Flags().StringVar(&reqQty, "qty", "", "Quantity (default the whole range)")
	requestListCmd.Flags().StringVar(&reqListStatus, "status", "", "PENDING, APPROVED, REJECTED or CANCELLED")
	requestListCmd.Flags().IntVar(&reqListLimit, "limit", 0, "Maximum rows")

	requestCmd.AddCommand(
		requestSubmitCmd,
		requestQuoteCmd,
		requestListCmd,
		requestGetCmd,
		decisionCmd("approve", "Approve a pending request", (*client.Client).ApproveRequest),
		decisionCmd("reject", "Reject a pending request", (*client.Client).RejectRequest),
		decisionCmd("cancel", "Cancel a pending or approved request", (*client.Client).CancelRequest),
	)
	rootCmd.AddCommand(requestCmd)
}
