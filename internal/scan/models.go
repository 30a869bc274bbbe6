// Package scan implements the security posture aggregation engine:
// fan-out collection across subscriptions, NSG risk classification,
// identity resolution, and role assignment analysis.
package scan

import "time"

// Scope identifies one unit of fan-out isolation (an Azure subscription ID).
type Scope string

// RiskLevel orders exposure severity Low < Medium < High.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

var riskRank = map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}

// Max returns the more severe of two risk levels.
func (r RiskLevel) Max(other RiskLevel) RiskLevel {
	if riskRank[other] > riskRank[r] {
		return other
	}
	return r
}

// IdentityType classifies the principal behind a role assignment.
type IdentityType string

const (
	IdentityUser             IdentityType = "User"
	IdentityServicePrincipal IdentityType = "ServicePrincipal"
	IdentityManagedIdentity  IdentityType = "ManagedIdentity"
	IdentityGroup            IdentityType = "Group"
	IdentityUnresolved       IdentityType = "Unresolved"
)

// IdentityTypes lists every bucket in classification order.
// The set is closed: every assignment lands in exactly one.
var IdentityTypes = []IdentityType{
	IdentityUser,
	IdentityServicePrincipal,
	IdentityManagedIdentity,
	IdentityGroup,
	IdentityUnresolved,
}

// SecurityRule is an immutable snapshot of one NSG rule as returned upstream.
type SecurityRule struct {
	Name                 string `json:"name" yaml:"name"`
	Priority             int32  `json:"priority" yaml:"priority"`
	Direction            string `json:"direction" yaml:"direction"`
	Access               string `json:"access" yaml:"access"`
	Protocol             string `json:"protocol" yaml:"protocol"`
	SourcePortRange      string `json:"sourcePortRange" yaml:"sourcePortRange"`
	DestinationPortRange string `json:"destinationPortRange" yaml:"destinationPortRange"`
	SourcePrefix         string `json:"sourceAddressPrefix" yaml:"sourceAddressPrefix"`
	DestinationPrefix    string `json:"destinationAddressPrefix" yaml:"destinationAddressPrefix"`
}

// SecurityGroupConfig is the raw NSG snapshot handed to the classifier.
type SecurityGroupConfig struct {
	ID            string
	Name          string
	Location      string
	ResourceGroup string
	Rules         []SecurityRule
}

// RiskAssessment is the classifier verdict over one rule set.
type RiskAssessment struct {
	Level      RiskLevel      `json:"riskLevel" yaml:"riskLevel"`
	RiskyRules []SecurityRule `json:"riskyRules" yaml:"riskyRules"`
	Reasons    []string       `json:"riskReasons" yaml:"riskReasons"`
}

// SecurityGroupAssessment is one NSG with its classified risk.
// Derived data: recomputed from the current rule snapshot on every scan.
type SecurityGroupAssessment struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Location       string         `json:"location" yaml:"location"`
	ResourceGroup  string         `json:"resourceGroup" yaml:"resourceGroup"`
	SubscriptionID Scope          `json:"subscriptionId" yaml:"subscriptionId"`
	Rules          []SecurityRule `json:"rules" yaml:"rules"`
	RiskAssessment `yaml:",inline"`
}

// Principal is a directory principal with its resolved identity type.
type Principal struct {
	ID          string       `json:"id" yaml:"id"`
	Type        IdentityType `json:"type" yaml:"type"`
	DisplayName string       `json:"displayName,omitempty" yaml:"displayName,omitempty"`
}

// RoleAssignment is a raw RBAC assignment exactly as returned upstream.
type RoleAssignment struct {
	PrincipalID      string `json:"principalId" yaml:"principalId"`
	RoleDefinitionID string `json:"roleDefinitionId" yaml:"roleDefinitionId"`
	Scope            string `json:"scope" yaml:"scope"`
	SubscriptionID   Scope  `json:"subscriptionId" yaml:"subscriptionId"`
}

// RoleGrant is a role assignment enriched with the resolved principal type
// and role display name.
type RoleGrant struct {
	PrincipalID    string       `json:"principalId" yaml:"principalId"`
	PrincipalName  string       `json:"principalName,omitempty" yaml:"principalName,omitempty"`
	PrincipalType  IdentityType `json:"principalType" yaml:"principalType"`
	RoleName       string       `json:"roleDefinitionName" yaml:"roleDefinitionName"`
	Scope          string       `json:"scope" yaml:"scope"`
	SubscriptionID Scope        `json:"subscriptionId" yaml:"subscriptionId"`
}

// IdentityStats counts assignments held by one identity type.
type IdentityStats struct {
	Count          int            `json:"count" yaml:"count"`
	RoleNameCounts map[string]int `json:"roles" yaml:"roles"`
}

// IdentityBreakdown aggregates role assignment counts per identity type.
type IdentityBreakdown map[IdentityType]*IdentityStats

// Total returns the number of assignments across all buckets.
func (b IdentityBreakdown) Total() int {
	total := 0
	for _, stats := range b {
		total += stats.Count
	}
	return total
}

// GrantGroups holds detailed grants in the five fixed identity buckets.
type GrantGroups struct {
	Users             []RoleGrant `json:"users" yaml:"users"`
	ServicePrincipals []RoleGrant `json:"servicePrincipals" yaml:"servicePrincipals"`
	ManagedIdentities []RoleGrant `json:"managedIdentities" yaml:"managedIdentities"`
	Groups            []RoleGrant `json:"groups" yaml:"groups"`
	Unresolved        []RoleGrant `json:"unresolved" yaml:"unresolved"`
}

// PublicResource is a resource reachable via a public IP address.
type PublicResource struct {
	ResourceID     string   `json:"resourceId" yaml:"resourceId"`
	ResourceName   string   `json:"resourceName" yaml:"resourceName"`
	ResourceType   string   `json:"resourceType" yaml:"resourceType"`
	PublicIP       string   `json:"publicIp" yaml:"publicIp"`
	Ports          []int32  `json:"ports" yaml:"ports"`
	Protocols      []string `json:"protocols" yaml:"protocols"`
	SubscriptionID Scope    `json:"subscriptionId" yaml:"subscriptionId"`
	ResourceGroup  string   `json:"resourceGroup" yaml:"resourceGroup"`
}

// UserAccount is one tenant user from the directory.
type UserAccount struct {
	ID                string `json:"id" yaml:"id"`
	DisplayName       string `json:"displayName" yaml:"displayName"`
	UserPrincipalName string `json:"userPrincipalName" yaml:"userPrincipalName"`
	Mail              string `json:"mail,omitempty" yaml:"mail,omitempty"`
	IsGuest           bool   `json:"isGuest" yaml:"isGuest"`
}

// PolicyAssignment is one Azure Policy assignment.
type PolicyAssignment struct {
	ID                 string `json:"id" yaml:"id"`
	Name               string `json:"name" yaml:"name"`
	DisplayName        string `json:"displayName" yaml:"displayName"`
	PolicyDefinitionID string `json:"policyDefinitionId" yaml:"policyDefinitionId"`
	Scope              string `json:"scope" yaml:"scope"`
	EnforcementMode    string `json:"enforcementMode" yaml:"enforcementMode"`
}

// ComplianceResult is one resource's compliance state against a policy
// assignment, sourced from Policy Insights.
type ComplianceResult struct {
	PolicyAssignmentID   string `json:"policyAssignmentId" yaml:"policyAssignmentId"`
	PolicyAssignmentName string `json:"policyAssignmentName" yaml:"policyAssignmentName"`
	ResourceID           string `json:"resourceId" yaml:"resourceId"`
	ComplianceState      string `json:"complianceState" yaml:"complianceState"`
	ResourceType         string `json:"resourceType" yaml:"resourceType"`
	ResourceLocation     string `json:"resourceLocation" yaml:"resourceLocation"`
}

// ComplianceTally counts compliant and non-compliant resources.
type ComplianceTally struct {
	Compliant    int `json:"compliant" yaml:"compliant"`
	NonCompliant int `json:"nonCompliant" yaml:"nonCompliant"`
	Total        int `json:"total" yaml:"total"`
}

// ComplianceSummary aggregates compliance results overall and per subscription.
type ComplianceSummary struct {
	Compliant      int                       `json:"compliantResources" yaml:"compliantResources"`
	NonCompliant   int                       `json:"nonCompliantResources" yaml:"nonCompliantResources"`
	Percentage     float64                   `json:"compliancePercentage" yaml:"compliancePercentage"`
	BySubscription map[Scope]ComplianceTally `json:"bySubscription" yaml:"bySubscription"`
}

// ControlScore is one Defender for Cloud secure score entry.
type ControlScore struct {
	SubscriptionID Scope   `json:"subscriptionId" yaml:"subscriptionId"`
	ScoreName      string  `json:"scoreName" yaml:"scoreName"`
	DisplayName    string  `json:"displayName" yaml:"displayName"`
	CurrentScore   float64 `json:"currentScore" yaml:"currentScore"`
	MaxScore       float64 `json:"maxScore" yaml:"maxScore"`
	Percentage     float64 `json:"percentage" yaml:"percentage"`
}

// SecureScoreSummary sums secure scores across all scanned subscriptions.
type SecureScoreSummary struct {
	CurrentScore  float64        `json:"currentScore" yaml:"currentScore"`
	MaxScore      float64        `json:"maxScore" yaml:"maxScore"`
	Percentage    float64        `json:"percentage" yaml:"percentage"`
	ControlScores []ControlScore `json:"controlScores" yaml:"controlScores"`
}

// Recommendation is one Defender for Cloud assessment finding.
type Recommendation struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description" yaml:"description"`
	Severity       string `json:"severity" yaml:"severity"`
	Category       string `json:"category" yaml:"category"`
	State          string `json:"state" yaml:"state"`
	SubscriptionID Scope  `json:"subscriptionId" yaml:"subscriptionId"`
}

// Subscription is one discovered subscription in the tenant.
type Subscription struct {
	ID          Scope  `json:"subscriptionId" yaml:"subscriptionId"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	State       string `json:"state" yaml:"state"`
	TenantID    string `json:"tenantId" yaml:"tenantId"`
}

// ScanSnapshot is the unified scan result consumed by the reporting layer.
//
// Degraded sections are explicitly empty or zero-valued rather than absent;
// Warnings is the only way to tell "nothing found" from "could not assess".
type ScanSnapshot struct {
	TenantID          string                    `json:"tenantId" yaml:"tenantId"`
	ScannedAt         time.Time                 `json:"scannedAt" yaml:"scannedAt"`
	SecureScore       SecureScoreSummary        `json:"secureScore" yaml:"secureScore"`
	Recommendations   []Recommendation          `json:"recommendations" yaml:"recommendations"`
	PublicResources   []PublicResource          `json:"publicResources" yaml:"publicResources"`
	SecurityGroups    []SecurityGroupAssessment `json:"networkSecurityGroups" yaml:"networkSecurityGroups"`
	Users             []UserAccount             `json:"users" yaml:"users"`
	RoleGrants        []RoleGrant               `json:"roleAssignments" yaml:"roleAssignments"`
	IdentityBreakdown IdentityBreakdown         `json:"identitySummary" yaml:"identitySummary"`
	DetailedGrants    GrantGroups               `json:"identityGrants" yaml:"identityGrants"`
	PolicyAssignments []PolicyAssignment        `json:"policyAssignments" yaml:"policyAssignments"`
	ComplianceResults []ComplianceResult        `json:"complianceResults" yaml:"complianceResults"`
	ComplianceSummary ComplianceSummary         `json:"complianceSummary" yaml:"complianceSummary"`
	Warnings          []string                  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
