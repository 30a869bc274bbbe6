package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wardspan/azure-recon/internal/azure"
	"github.com/wardspan/azure-recon/internal/output"
)

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "List subscriptions visible to the credential",
	Long: `Enumerates the subscriptions the authenticated identity can see,
with their state. Disabled subscriptions are listed but excluded from scans.

Examples:
  azrecon subscriptions
  azrecon subscriptions --json`,
	RunE: runSubscriptions,
}

var subscriptionsTenantID string

func init() {
	subscriptionsCmd.Flags().StringVar(&subscriptionsTenantID, "tenant-id", "", "Azure AD tenant ID (default: detected from az CLI)")
	rootCmd.AddCommand(subscriptionsCmd)
}

func runSubscriptions(cmd *cobra.Command, _ []string) error {
	output.Init(verbosity > 0, jsonOutput)
	ctx := cmd.Context()

	tenantID, err := resolveTenantID(subscriptionsTenantID)
	if err != nil {
		return err
	}
	cred, err := authenticate(ctx, tenantID)
	if err != nil {
		return err
	}

	subs, err := azure.ListSubscriptions(ctx, cred.TokenCredential)
	if err != nil {
		return err
	}

	if jsonOutput {
		output.JSON(subs)
		return nil
	}

	bold := color.New(color.Bold)
	bold.Fprintf(os.Stderr, "📋 Subscriptions in tenant %s\n\n", tenantID)
	for _, sub := range subs {
		marker := "✅"
		if sub.State != "" && sub.State != "Enabled" {
			marker = "⏸️"
		}
		fmt.Fprintf(os.Stderr, "  %s %-38s %-30s %s\n", marker, sub.ID, sub.DisplayName, sub.State)
	}
	fmt.Fprintf(os.Stderr, "\n  %d subscription(s)\n", len(subs))
	return nil
}
