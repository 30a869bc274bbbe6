package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wardspan/azure-recon/internal/output"
	"github.com/wardspan/azure-recon/internal/scan"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Show Azure Policy assignments and compliance",
	Long: `Lists policy assignments across the selected subscriptions and
summarizes resource compliance from Policy Insights.

Examples:
  azrecon policy
  azrecon policy --subscription sub-1 --json`,
	RunE: runPolicy,
}

var (
	policyTenantID        string
	policySubscriptions   []string
	policyManagementGroup string
)

func init() {
	policyCmd.Flags().StringVar(&policyTenantID, "tenant-id", "", "Azure AD tenant ID (default: detected from az CLI)")
	policyCmd.Flags().StringArrayVar(&policySubscriptions, "subscription", nil, "subscription ID to scan (repeatable; default: all enabled)")
	policyCmd.Flags().StringVar(&policyManagementGroup, "management-group", "", "scan all subscriptions under a management group")
	rootCmd.AddCommand(policyCmd)
}

func runPolicy(cmd *cobra.Command, _ []string) error {
	output.Init(verbosity > 0, jsonOutput)
	ctx := cmd.Context()

	sctx, scopes, err := newScanSession(ctx, policyTenantID, policySubscriptions, policyManagementGroup, false)
	if err != nil {
		return err
	}

	assignments, compliance, warnings := scan.NewOrchestrator(sctx).CollectPolicy(ctx, scopes)
	summary := scan.SummarizeCompliance(compliance)

	if jsonOutput {
		output.JSON(map[string]interface{}{
			"policyAssignments": assignments,
			"complianceSummary": summary,
			"warnings":          warnings,
		})
		return nil
	}

	bold := color.New(color.Bold)

	bold.Fprintf(os.Stderr, "📜 Policy assignments (%d)\n\n", len(assignments))
	for _, assignment := range assignments {
		name := assignment.DisplayName
		if name == "" {
			name = assignment.Name
		}
		fmt.Fprintf(os.Stderr, "  • %-45s mode=%s scope=%s\n", name, assignment.EnforcementMode, assignment.Scope)
	}

	fmt.Fprintln(os.Stderr)
	bold.Fprintln(os.Stderr, "📊 Compliance")
	fmt.Fprintf(os.Stderr, "  Compliant:     %d\n", summary.Compliant)
	fmt.Fprintf(os.Stderr, "  Non-compliant: %d\n", summary.NonCompliant)
	fmt.Fprintf(os.Stderr, "  Rate:          %.1f%%\n", summary.Percentage)

	subs := make([]string, 0, len(summary.BySubscription))
	for sub := range summary.BySubscription {
		subs = append(subs, string(sub))
	}
	sort.Strings(subs)
	for _, sub := range subs {
		tally := summary.BySubscription[scan.Scope(sub)]
		fmt.Fprintf(os.Stderr, "    %-38s %d/%d compliant\n", sub, tally.Compliant, tally.Total)
	}

	for _, w := range warnings {
		output.Warn(w)
	}
	return nil
}
