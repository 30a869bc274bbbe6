package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wardspan/azure-recon/internal/graph"
	"github.com/wardspan/azure-recon/internal/output"
	"github.com/wardspan/azure-recon/internal/scan"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Inventory tenant users from the directory",
	Long: `Lists tenant users via Microsoft Graph with their principal name and
guest flag. Requires Directory.Read.All on the signed-in identity.

Examples:
  azrecon identity
  azrecon identity --top 500 --guests-only
  azrecon identity --json`,
	RunE: runIdentity,
}

var (
	identityTenantID   string
	identityTop        int
	identityGuestsOnly bool
)

func init() {
	identityCmd.Flags().StringVar(&identityTenantID, "tenant-id", "", "Azure AD tenant ID (default: detected from az CLI)")
	identityCmd.Flags().IntVar(&identityTop, "top", 100, "max number of users to list")
	identityCmd.Flags().BoolVar(&identityGuestsOnly, "guests-only", false, "only show guest accounts")
	rootCmd.AddCommand(identityCmd)
}

func runIdentity(cmd *cobra.Command, _ []string) error {
	output.Init(verbosity > 0, jsonOutput)
	ctx := cmd.Context()

	tenantID, err := resolveTenantID(identityTenantID)
	if err != nil {
		return err
	}
	cred, err := authenticate(ctx, tenantID)
	if err != nil {
		return err
	}

	users, err := graph.NewClient(cred.TokenCredential).Users(ctx, identityTop)
	if err != nil {
		return fmt.Errorf("listing tenant users: %w", err)
	}

	if identityGuestsOnly {
		guests := make([]scan.UserAccount, 0, len(users))
		for _, u := range users {
			if u.IsGuest {
				guests = append(guests, u)
			}
		}
		users = guests
	}

	if jsonOutput {
		output.JSON(map[string]interface{}{"users": users})
		return nil
	}

	guestCount := 0
	bold := color.New(color.Bold)
	bold.Fprintf(os.Stderr, "👥 Tenant users (%d)\n\n", len(users))
	for _, u := range users {
		marker := "  "
		if u.IsGuest {
			marker = "👤"
			guestCount++
		}
		fmt.Fprintf(os.Stderr, "  %s %-35s %s\n", marker, u.DisplayName, u.UserPrincipalName)
	}
	if guestCount > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d guest account(s)\n", guestCount)
	}
	return nil
}
