// Package report renders scan snapshots for humans and machines. Markdown is
// the default terminal/report format; JSON and YAML serve scripting.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wardspan/azure-recon/internal/scan"
)

// RenderMarkdown renders a human-readable posture report in Markdown format.
func RenderMarkdown(snapshot *scan.ScanSnapshot) string {
	if snapshot == nil {
		return "# Azure Security Posture Report\n\nNo data available."
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "# Azure Security Posture Report\n\n")
	fmt.Fprintf(b, "- Tenant: `%s`\n", snapshot.TenantID)
	fmt.Fprintf(b, "- Scanned At: `%s`\n", snapshot.ScannedAt.UTC().Format("2006-01-02 15:04:05Z"))
	fmt.Fprintf(b, "- Secure Score: **%.1f/%.1f (%.1f%%)**\n\n",
		snapshot.SecureScore.CurrentScore, snapshot.SecureScore.MaxScore, snapshot.SecureScore.Percentage)

	if len(snapshot.Warnings) > 0 {
		fmt.Fprintf(b, "## Warnings\n\n")
		for _, warning := range snapshot.Warnings {
			fmt.Fprintf(b, "- ⚠️ %s\n", warning)
		}
		fmt.Fprintln(b)
	}

	renderSecurityGroups(b, snapshot.SecurityGroups)
	renderPublicResources(b, snapshot.PublicResources)
	renderIdentity(b, snapshot.IdentityBreakdown)
	renderCompliance(b, snapshot.ComplianceSummary, snapshot.PolicyAssignments)
	renderRecommendations(b, snapshot.Recommendations)

	return b.String()
}

func renderSecurityGroups(b *strings.Builder, groups []scan.SecurityGroupAssessment) {
	fmt.Fprintf(b, "## Network Security Groups\n\n")
	if len(groups) == 0 {
		fmt.Fprintf(b, "No network security groups found.\n\n")
		return
	}

	sorted := make([]scan.SecurityGroupAssessment, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return riskOrder(sorted[i].Level) < riskOrder(sorted[j].Level)
	})

	counts := map[scan.RiskLevel]int{}
	for _, g := range sorted {
		counts[g.Level]++
	}
	fmt.Fprintf(b, "Total: %d (high=%d, medium=%d, low=%d)\n\n",
		len(sorted), counts[scan.RiskHigh], counts[scan.RiskMedium], counts[scan.RiskLow])

	for _, g := range sorted {
		fmt.Fprintf(b, "### %s — %s\n\n", g.Name, riskBadge(g.Level))
		fmt.Fprintf(b, "- Subscription: `%s`\n", g.SubscriptionID)
		fmt.Fprintf(b, "- Resource Group: %s\n", g.ResourceGroup)
		fmt.Fprintf(b, "- Location: %s\n", g.Location)
		for _, reason := range g.Reasons {
			fmt.Fprintf(b, "- Finding: %s\n", reason)
		}
		fmt.Fprintln(b)
	}
}

func renderPublicResources(b *strings.Builder, resources []scan.PublicResource) {
	fmt.Fprintf(b, "## Public Exposure\n\n")
	if len(resources) == 0 {
		fmt.Fprintf(b, "No resources with public IP addresses found.\n\n")
		return
	}
	fmt.Fprintf(b, "| Resource | Type | Public IP | Ports | Subscription |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|\n")
	for _, r := range resources {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			r.ResourceName, r.ResourceType, r.PublicIP, formatPorts(r.Ports), r.SubscriptionID)
	}
	fmt.Fprintln(b)
}

func renderIdentity(b *strings.Builder, breakdown scan.IdentityBreakdown) {
	fmt.Fprintf(b, "## Identity & Access\n\n")
	if breakdown.Total() == 0 {
		fmt.Fprintf(b, "No role assignments found.\n\n")
		return
	}
	fmt.Fprintf(b, "Total role assignments: %d\n\n", breakdown.Total())
	for _, identityType := range scan.IdentityTypes {
		stats, ok := breakdown[identityType]
		if !ok || stats.Count == 0 {
			continue
		}
		fmt.Fprintf(b, "- %s: %d\n", identityType, stats.Count)
	}
	fmt.Fprintln(b)
}

func renderCompliance(b *strings.Builder, summary scan.ComplianceSummary, assignments []scan.PolicyAssignment) {
	fmt.Fprintf(b, "## Policy Compliance\n\n")
	fmt.Fprintf(b, "- Policy assignments: %d\n", len(assignments))
	fmt.Fprintf(b, "- Compliant resources: %d\n", summary.Compliant)
	fmt.Fprintf(b, "- Non-compliant resources: %d\n", summary.NonCompliant)
	fmt.Fprintf(b, "- Compliance: **%.1f%%**\n\n", summary.Percentage)
}

func renderRecommendations(b *strings.Builder, recommendations []scan.Recommendation) {
	unhealthy := make([]scan.Recommendation, 0)
	for _, rec := range recommendations {
		if strings.EqualFold(rec.State, "Unhealthy") {
			unhealthy = append(unhealthy, rec)
		}
	}
	if len(unhealthy) == 0 {
		return
	}
	fmt.Fprintf(b, "## Security Recommendations\n\n")
	for _, rec := range unhealthy {
		fmt.Fprintf(b, "- **%s** (%s): %s\n", rec.Severity, rec.SubscriptionID, rec.Name)
	}
	fmt.Fprintln(b)
}

func riskOrder(level scan.RiskLevel) int {
	switch level {
	case scan.RiskHigh:
		return 0
	case scan.RiskMedium:
		return 1
	default:
		return 2
	}
}

func riskBadge(level scan.RiskLevel) string {
	switch level {
	case scan.RiskHigh:
		return "🔴 High"
	case scan.RiskMedium:
		return "🟡 Medium"
	default:
		return "🟢 Low"
	}
}

func formatPorts(ports []int32) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(ports))
	for _, port := range ports {
		parts = append(parts, fmt.Sprintf("%d", port))
	}
	return strings.Join(parts, ", ")
}
