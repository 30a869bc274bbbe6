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

var nsgsCmd = &cobra.Command{
	Use:   "nsgs",
	Short: "Assess Network Security Groups for risky inbound exposure",
	Long: `Lists every NSG across the selected subscriptions with its risk level.

Classification looks at inbound Allow rules only:
  High    dangerous port (SSH, RDP, databases...) or all ports open to Internet
  Medium  broad port range or any other internet-open inbound rule
  Low     nothing internet-facing

Examples:
  azrecon nsgs
  azrecon nsgs --subscription sub-1 --json`,
	RunE: runNSGs,
}

var (
	nsgsTenantID        string
	nsgsSubscriptions   []string
	nsgsManagementGroup string
	nsgsRiskOnly        bool
)

func init() {
	nsgsCmd.Flags().StringVar(&nsgsTenantID, "tenant-id", "", "Azure AD tenant ID (default: detected from az CLI)")
	nsgsCmd.Flags().StringArrayVar(&nsgsSubscriptions, "subscription", nil, "subscription ID to scan (repeatable; default: all enabled)")
	nsgsCmd.Flags().StringVar(&nsgsManagementGroup, "management-group", "", "scan all subscriptions under a management group")
	nsgsCmd.Flags().BoolVar(&nsgsRiskOnly, "risk-only", false, "only show Medium and High risk NSGs")
	rootCmd.AddCommand(nsgsCmd)
}

func runNSGs(cmd *cobra.Command, _ []string) error {
	output.Init(verbosity > 0, jsonOutput)
	ctx := cmd.Context()

	sctx, scopes, err := newScanSession(ctx, nsgsTenantID, nsgsSubscriptions, nsgsManagementGroup, false)
	if err != nil {
		return err
	}

	assessments, warnings := scan.NewOrchestrator(sctx).CollectSecurityGroups(ctx, scopes)

	if nsgsRiskOnly {
		filtered := assessments[:0]
		for _, a := range assessments {
			if a.Level != scan.RiskLow {
				filtered = append(filtered, a)
			}
		}
		assessments = filtered
	}
	sort.SliceStable(assessments, func(i, j int) bool {
		return riskRank(assessments[i].Level) < riskRank(assessments[j].Level)
	})

	if jsonOutput {
		output.JSON(map[string]interface{}{
			"securityGroups": assessments,
			"warnings":       warnings,
		})
		return nil
	}

	bold := color.New(color.Bold)
	bold.Fprintf(os.Stderr, "🛡️  NSG assessment (%d groups)\n\n", len(assessments))
	for _, a := range assessments {
		c := color.New(color.FgGreen)
		switch a.Level {
		case scan.RiskHigh:
			c = color.New(color.FgRed, color.Bold)
		case scan.RiskMedium:
			c = color.New(color.FgYellow)
		}
		c.Fprintf(os.Stderr, "  %-8s", a.Level)
		fmt.Fprintf(os.Stderr, " %-30s sub=%s rg=%s\n", a.Name, a.SubscriptionID, a.ResourceGroup)
		for _, reason := range a.Reasons {
			fmt.Fprintf(os.Stderr, "           • %s\n", reason)
		}
	}
	for _, w := range warnings {
		output.Warn(w)
	}
	return nil
}

func riskRank(level scan.RiskLevel) int {
	switch level {
	case scan.RiskHigh:
		return 0
	case scan.RiskMedium:
		return 1
	default:
		return 2
	}
}
