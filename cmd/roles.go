package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wardspan/azure-recon/internal/output"
	"github.com/wardspan/azure-recon/internal/scan"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Classify RBAC role assignments by identity type",
	Long: `Collects every role assignment across the selected subscriptions,
resolves each principal against Microsoft Graph, and buckets the grants:

  User, ServicePrincipal, ManagedIdentity, Group, Unresolved

Unresolved covers deleted principals and directory outages; the counts
always add up to the raw assignment total.

Examples:
  azrecon roles
  azrecon roles --subscription sub-1 --json
  azrecon roles --no-directory`,
	RunE: runRoles,
}

var (
	rolesTenantID        string
	rolesSubscriptions   []string
	rolesManagementGroup string
	rolesNoDirectory     bool
)

func init() {
	rolesCmd.Flags().StringVar(&rolesTenantID, "tenant-id", "", "Azure AD tenant ID (default: detected from az CLI)")
	rolesCmd.Flags().StringArrayVar(&rolesSubscriptions, "subscription", nil, "subscription ID to scan (repeatable; default: all enabled)")
	rolesCmd.Flags().StringVar(&rolesManagementGroup, "management-group", "", "scan all subscriptions under a management group")
	rolesCmd.Flags().BoolVar(&rolesNoDirectory, "no-directory", false, "skip Microsoft Graph lookups (identities report as Unresolved)")
	rootCmd.AddCommand(rolesCmd)
}

func runRoles(cmd *cobra.Command, _ []string) error {
	output.Init(verbosity > 0, jsonOutput)
	ctx := cmd.Context()

	sctx, scopes, err := newScanSession(ctx, rolesTenantID, rolesSubscriptions, rolesManagementGroup, !rolesNoDirectory)
	if err != nil {
		return err
	}

	grants, breakdown, groups, warnings := scan.NewOrchestrator(sctx).AnalyzeRoles(ctx, scopes)

	if jsonOutput {
		output.JSON(map[string]interface{}{
			"roleAssignments": grants,
			"identitySummary": breakdown,
			"identityGrants":  groups,
			"warnings":        warnings,
		})
		return nil
	}

	bold := color.New(color.Bold)
	bold.Fprintf(os.Stderr, "🔑 Role assignments (%d total)\n\n", breakdown.Total())
	for _, identityType := range scan.IdentityTypes {
		stats, ok := breakdown[identityType]
		if !ok || stats.Count == 0 {
			continue
		}
		fmt.Fprintf(os.Stderr, "  %-18s %d\n", identityType, stats.Count)
		for role, count := range stats.RoleNameCounts {
			fmt.Fprintf(os.Stderr, "    %-20s %d\n", role, count)
		}
	}
	if unresolved := breakdown[scan.IdentityUnresolved]; unresolved != nil && unresolved.Count > 0 {
		output.Warn(fmt.Sprintf("%d assignment(s) could not be resolved to a live principal", unresolved.Count))
	}
	for _, w := range warnings {
		output.Warn(w)
	}
	return nil
}
