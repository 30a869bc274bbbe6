package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardspan/azure-recon/internal/scan"
)

func sampleSnapshot() *scan.ScanSnapshot {
	return &scan.ScanSnapshot{
		TenantID:  "tenant-123",
		ScannedAt: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		SecureScore: scan.SecureScoreSummary{
			CurrentScore: 32.5,
			MaxScore:     58,
			Percentage:   56.0,
		},
		SecurityGroups: []scan.SecurityGroupAssessment{
			{
				Name:           "nsg-web",
				SubscriptionID: "sub-1",
				ResourceGroup:  "rg-web",
				Location:       "eastus",
				RiskAssessment: scan.RiskAssessment{
					Level:   scan.RiskLow,
					Reasons: []string{},
				},
			},
			{
				Name:           "nsg-db",
				SubscriptionID: "sub-1",
				ResourceGroup:  "rg-data",
				Location:       "eastus",
				RiskAssessment: scan.RiskAssessment{
					Level:   scan.RiskHigh,
					Reasons: []string{"Allows SSH (22) from Internet"},
				},
			},
		},
		PublicResources: []scan.PublicResource{
			{
				ResourceName:   "vm-jump",
				ResourceType:   "VirtualMachine",
				PublicIP:       "20.1.2.3",
				Ports:          []int32{443},
				SubscriptionID: "sub-1",
			},
		},
		IdentityBreakdown: scan.IdentityBreakdown{
			scan.IdentityUser: &scan.IdentityStats{Count: 3, RoleNameCounts: map[string]int{"Owner": 1, "Reader": 2}},
		},
		ComplianceSummary: scan.ComplianceSummary{
			Compliant:    8,
			NonCompliant: 2,
			Percentage:   80,
		},
		Recommendations: []scan.Recommendation{
			{Name: "Enable MFA", Severity: "High", State: "Unhealthy", SubscriptionID: "sub-1"},
			{Name: "Healthy thing", Severity: "Low", State: "Healthy", SubscriptionID: "sub-1"},
		},
		Warnings: []string{"policy scan failed for subscription sub-2"},
	}
}

func TestRenderMarkdown_Basic(t *testing.T) {
	output := RenderMarkdown(sampleSnapshot())

	assert.Contains(t, output, "# Azure Security Posture Report")
	assert.Contains(t, output, "tenant-123")
	assert.Contains(t, output, "**32.5/58.0 (56.0%)**")
	assert.Contains(t, output, "## Network Security Groups")
	assert.Contains(t, output, "Allows SSH (22) from Internet")
	assert.Contains(t, output, "## Public Exposure")
	assert.Contains(t, output, "vm-jump")
	assert.Contains(t, output, "## Policy Compliance")
	assert.Contains(t, output, "**80.0%**")
	assert.Contains(t, output, "Enable MFA")
	assert.NotContains(t, output, "Healthy thing")
	assert.Contains(t, output, "policy scan failed for subscription sub-2")
}

func TestRenderMarkdown_SortsByRiskDescending(t *testing.T) {
	output := RenderMarkdown(sampleSnapshot())

	highIdx := strings.Index(output, "nsg-db")
	lowIdx := strings.Index(output, "nsg-web")
	require.Positive(t, highIdx)
	require.Positive(t, lowIdx)
	assert.Less(t, highIdx, lowIdx, "high-risk NSG should render before low-risk")
}

func TestRenderMarkdown_Nil(t *testing.T) {
	output := RenderMarkdown(nil)
	assert.Contains(t, output, "No data available")
}

func TestRenderMarkdown_EmptySections(t *testing.T) {
	output := RenderMarkdown(&scan.ScanSnapshot{TenantID: "t"})
	assert.Contains(t, output, "No network security groups found")
	assert.Contains(t, output, "No resources with public IP addresses found")
	assert.Contains(t, output, "No role assignments found")
	assert.NotContains(t, output, "## Warnings")
	assert.NotContains(t, output, "## Security Recommendations")
}

func TestRenderJSON_Basic(t *testing.T) {
	bytes, err := RenderJSON(sampleSnapshot())
	require.NoError(t, err)
	jsonOutput := string(bytes)
	assert.Contains(t, jsonOutput, "\"tenantId\": \"tenant-123\"")
	assert.Contains(t, jsonOutput, "\"networkSecurityGroups\"")
	assert.Contains(t, jsonOutput, "\"identitySummary\"")
}

func TestRenderYAML_Basic(t *testing.T) {
	bytes, err := RenderYAML(sampleSnapshot())
	require.NoError(t, err)
	yamlOutput := string(bytes)
	assert.Contains(t, yamlOutput, "tenantId: tenant-123")
	assert.Contains(t, yamlOutput, "networkSecurityGroups:")
}
