package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wardspan/azure-recon/internal/azauth"
	"github.com/wardspan/azure-recon/internal/azure"
	"github.com/wardspan/azure-recon/internal/graph"
	"github.com/wardspan/azure-recon/internal/output"
	"github.com/wardspan/azure-recon/internal/report"
	"github.com/wardspan/azure-recon/internal/scan"
	"github.com/wardspan/azure-recon/internal/wizard"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a full security posture scan of the tenant",
	Long: `Authenticates to the tenant and runs every analysis kind in parallel
across the selected subscriptions:

  - NSG risk classification (inbound exposure)
  - Public resource inventory (VMs, LBs, app gateways behind public IPs)
  - RBAC role assignments bucketed by identity type
  - Policy assignments and compliance states
  - Defender for Cloud secure score and recommendations
  - Tenant user inventory

Partial failures degrade the affected section and are listed under
Warnings in the report; only a missing credential aborts the scan.

Examples:
  azrecon scan
  azrecon scan --tenant-id 00000000-0000-0000-0000-000000000001
  azrecon scan --subscription sub-1 --subscription sub-2 --format json
  azrecon scan --management-group platform --output posture.md
  azrecon scan --pick`,
	RunE: runScan,
}

var (
	scanTenantID        string
	scanSubscriptions   []string
	scanManagementGroup string
	scanFormat          string
	scanOutputPath      string
	scanMaxConcurrency  int
	scanNoDirectory     bool
	scanPick            bool
)

func init() {
	scanCmd.Flags().StringVar(&scanTenantID, "tenant-id", "", "Azure AD tenant ID (default: detected from az CLI)")
	scanCmd.Flags().StringArrayVar(&scanSubscriptions, "subscription", nil, "subscription ID to scan (repeatable; default: all enabled)")
	scanCmd.Flags().StringVar(&scanManagementGroup, "management-group", "", "scan all subscriptions under a management group")
	scanCmd.Flags().StringVar(&scanFormat, "format", "markdown", "report format: markdown, json, yaml")
	scanCmd.Flags().StringVarP(&scanOutputPath, "output", "o", "", "write report to file instead of stdout")
	scanCmd.Flags().IntVar(&scanMaxConcurrency, "max-concurrency", scan.DefaultMaxConcurrency, "max subscriptions scanned in parallel")
	scanCmd.Flags().BoolVar(&scanNoDirectory, "no-directory", false, "skip Microsoft Graph lookups (identities report as Unresolved)")
	scanCmd.Flags().BoolVar(&scanPick, "pick", false, "interactively pick tenant, subscriptions, and format")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	output.Init(verbosity > 0, jsonOutput)
	ctx := cmd.Context()

	tenantID, err := resolveTenantID(scanTenantID)
	if err != nil {
		return err
	}

	cred, err := authenticate(ctx, tenantID)
	if err != nil {
		return err
	}

	scopes, err := resolveScopes(ctx, cred, scanSubscriptions, scanManagementGroup)
	if err != nil {
		return err
	}

	format := scanFormat
	outputPath := scanOutputPath

	if scanPick {
		if effectiveCIMode() {
			return fmt.Errorf("--pick is not available in CI mode")
		}
		opts, err := pickScanOptions(tenantID, scopes)
		if err != nil {
			if err == wizard.ErrCancelled {
				output.Fail("Scan cancelled")
				return nil
			}
			return err
		}
		tenantID = opts.TenantID
		format = opts.Format
		outputPath = opts.OutputPath
		if len(opts.Subscriptions) > 0 {
			scopes = scopes[:0]
			for _, sub := range opts.Subscriptions {
				scopes = append(scopes, scan.Scope(sub))
			}
		}
	}

	var directory scan.DirectoryService
	if !scanNoDirectory {
		directory = graph.NewClient(cred.TokenCredential)
	}

	sctx := scan.NewScanContext(tenantID, cred, azure.NewFactory(cred.TokenCredential), directory)
	if scanMaxConcurrency > 0 {
		sctx.MaxConcurrency = scanMaxConcurrency
	}

	snapshot, err := scan.NewOrchestrator(sctx).RunFullScan(ctx, scopes)
	if err != nil {
		return err
	}

	rendered, err := renderSnapshot(snapshot, format)
	if err != nil {
		return err
	}
	return writeReport(rendered, outputPath)
}

// pickScanOptions runs the interactive wizard, seeding the subscription
// picker with names from the local az CLI when available.
func pickScanOptions(tenantID string, scopes []scan.Scope) (*wizard.ScanOptions, error) {
	names := map[string]string{}
	if summaries, err := azauth.DetectSubscriptions(); err == nil {
		for _, s := range summaries {
			names[s.ID] = s.Name
		}
	}

	choices := make([]wizard.SubscriptionChoice, 0, len(scopes))
	for _, scope := range scopes {
		choices = append(choices, wizard.SubscriptionChoice{
			ID:   string(scope),
			Name: names[string(scope)],
		})
	}

	return wizard.NewScanWizard(nil).Run(tenantID, choices)
}

func renderSnapshot(snapshot *scan.ScanSnapshot, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return []byte(report.RenderMarkdown(snapshot)), nil
	case "json":
		return report.RenderJSON(snapshot)
	case "yaml", "yml":
		return report.RenderYAML(snapshot)
	default:
		return nil, fmt.Errorf("unknown format %q (want markdown, json, or yaml)", format)
	}
}
