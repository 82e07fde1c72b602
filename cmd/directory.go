package cmd

import (
	"context"
	"fmt"

	"github.com/simonvc/leaveledger/internal/client"
	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/spf13/cobra"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var tenantCreateName string

var tenantCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		t, err := c.CreateTenant(context.Background(), args[0], tenantCreateName)
		if err != nil {
			return err
		}
		fmt.Printf("Tenant created: %s (%s)\n", t.ID, t.Name)
		return nil
	},
}

var tenantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		tenants, err := c.ListTenants(context.Background())
		if err != nil {
			return err
		}
		if len(tenants) == 0 {
			fmt.Println("No tenants found.")
			return nil
		}

		fmt.Printf("%-20s %s\n", "ID", "NAME")
		fmt.Printf("%-20s %s\n", "--", "----")
		for _, t := range tenants {
			fmt.Printf("%-20s %s\n", t.ID, t.Name)
		}
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var (
	userCreateName    string
	userCreateEmail   string
	userCreateHiredOn string
)

var userCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create a user in the tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}
		hired, err := optionalDate(userCreateHiredOn)
		if err != nil {
			return err
		}

		u, err := c.CreateUser(context.Background(), &leave.User{
			ID:      args[0],
			Name:    userCreateName,
			Email:   userCreateEmail,
			HiredOn: hired,
		})
		if err != nil {
			return err
		}
		fmt.Printf("User created: %s (%s)\n", u.ID, u.Name)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users in the tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tenantClient()
		if err != nil {
			return err
		}

		users, err := c.ListUsers(context.Background())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		fmt.Printf("%-20s %-30s %-30s %s\n", "ID", "NAME", "EMAIL", "HIRED")
		fmt.Printf("%-20s %-30s %-30s %s\n", "--", "----", "-----", "-----")
		for _, u := range users {
			fmt.Printf("%-20s %-30s %-30s %s\n", u.ID, truncate(u.Name, 28), truncate(u.Email, 28), u.HiredOn)
		}
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + ".."
	}
	return s
}

func optionalDate(s string) (leave.Date, error) {
	if s == "" {
		return leave.Date{}, nil
	}
	return leave.ParseDate(s)
}

func init() {
	tenantCreateCmd.Flags().StringVar(&tenantCreateName, "name", "", "Tenant name (required)")
	tenantCreateCmd.MarkFlagRequired("name")
	tenantCmd.AddCommand(tenantCreateCmd, tenantListCmd)

	userCreateCmd.Flags().StringVar(&userCreateName, "name", "", "Display name (required)")
	userCreateCmd.Flags().StringVar(&userCreateEmail, "email", "", "Email address")
	userCreateCmd.Flags().StringVar(&userCreateHiredOn, "hired-on", "", "Hire date (YYYY-MM-DD)")
	userCreateCmd.MarkFlagRequired("name")
	userCmd.AddCommand(userCreateCmd, userListCmd)

	rootCmd.AddCommand(tenantCmd, userCmd)
}
