package scan

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wardspan/azure-recon/internal/output"
)

// maxUserPage caps the tenant user inventory.
const maxUserPage = 100

// Orchestrator composes every analysis kind into one full tenant scan.
type Orchestrator struct {
	sctx *ScanContext
}

// NewOrchestrator builds an orchestrator over a per-scan context.
func NewOrchestrator(sctx *ScanContext) *Orchestrator {
	return &Orchestrator{sctx: sctx}
}

// RunFullScan fans out all analysis kinds across all scopes concurrently and
// assembles the unified snapshot. Only a missing credential aborts the scan;
// any analysis kind failing entirely degrades its snapshot field to an empty
// default and is recorded in Warnings. The snapshot is timestamped at
// assembly time.
func (o *Orchestrator) RunFullScan(ctx context.Context, scopes []Scope) (*ScanSnapshot, error) {
	if o.sctx.Credential != nil && !o.sctx.Credential.IsValid(ctx) {
		return nil, &AuthenticationError{}
	}

	output.Info("starting scan", "subscriptions", len(scopes))

	var (
		wg sync.WaitGroup

		secureScore     SecureScoreSummary
		recommendations []Recommendation
		publicResources []PublicResource
		securityGroups  []SecurityGroupAssessment
		users           []UserAccount
		roles           roleAnalysis
		policies        []PolicyAssignment
		compliance      []ComplianceResult

		warnMu   sync.Mutex
		warnings []string
	)

	addWarnings := func(ws ...string) {
		warnMu.Lock()
		warnings = append(warnings, ws...)
		warnMu.Unlock()
	}

	kinds := []func(){
		func() {
			var ws []string
			secureScore, ws = o.collectSecureScore(ctx, scopes)
			addWarnings(ws...)
		},
		func() {
			var ws []string
			recommendations, ws = o.collectRecommendations(ctx, scopes)
			addWarnings(ws...)
		},
		func() {
			var ws []string
			publicResources, ws = o.collectPublicResources(ctx, scopes)
			addWarnings(ws...)
		},
		func() {
			var ws []string
			securityGroups, ws = o.collectSecurityGroups(ctx, scopes)
			addWarnings(ws...)
		},
		func() {
			var err error
			users, err = o.collectUsers(ctx)
			if err != nil {
				output.Warn("user inventory degraded", "error", err)
				addWarnings("user inventory: " + err.Error())
				users = []UserAccount{}
			}
		},
		func() {
			var ws []string
			roles, ws = o.analyzeRoles(ctx, scopes)
			addWarnings(ws...)
		},
		func() {
			var ws []string
			policies, ws = o.collectPolicyAssignments(ctx, scopes)
			addWarnings(ws...)
		},
		func() {
			var ws []string
			compliance, ws = o.collectCompliance(ctx, scopes)
			addWarnings(ws...)
		},
	}

	for _, kind := range kinds {
		kind := kind
		wg.Add(1)
		go func() {
			defer wg.Done()
			kind()
		}()
	}
	wg.Wait()

	sort.Strings(warnings)

	snapshot := &ScanSnapshot{
		TenantID:          o.sctx.TenantID,
		ScannedAt:         time.Now().UTC(),
		SecureScore:       secureScore,
		Recommendations:   recommendations,
		PublicResources:   publicResources,
		SecurityGroups:    securityGroups,
		Users:             users,
		RoleGrants:        roles.grants,
		IdentityBreakdown: roles.breakdown,
		DetailedGrants:    roles.groups,
		PolicyAssignments: policies,
		ComplianceResults: compliance,
		ComplianceSummary: SummarizeCompliance(compliance),
		Warnings:          warnings,
	}

	output.Info("scan complete",
		"nsgs", len(snapshot.SecurityGroups),
		"publicResources", len(snapshot.PublicResources),
		"roleAssignments", len(snapshot.RoleGrants),
		"warnings", len(warnings),
	)
	return snapshot, nil
}

// CollectSecurityGroups assesses every NSG across the scope set.
func (o *Orchestrator) CollectSecurityGroups(ctx context.Context, scopes []Scope) ([]SecurityGroupAssessment, []string) {
	return o.collectSecurityGroups(ctx, scopes)
}

func (o *Orchestrator) collectSecurityGroups(ctx context.Context, scopes []Scope) ([]SecurityGroupAssessment, []string) {
	outcome := Collect(ctx, scopes, o.sctx.MaxConcurrency, func(ctx context.Context, scope Scope) ([]SecurityGroupAssessment, error) {
		client, err := o.sctx.Clients.Network(scope)
		if err != nil {
			return nil, err
		}
		groups, err := client.SecurityGroups(ctx)
		if err != nil {
			return nil, err
		}
		assessed := make([]SecurityGroupAssessment, 0, len(groups))
		for _, group := range groups {
			assessed = append(assessed, AssessSecurityGroup(group, scope))
		}
		return assessed, nil
	})
	return Merged(outcome), outcome.Warnings("nsg assessment")
}

// CollectPublicResources inventories internet-reachable resources.
func (o *Orchestrator) CollectPublicResources(ctx context.Context, scopes []Scope) ([]PublicResource, []string) {
	return o.collectPublicResources(ctx, scopes)
}

func (o *Orchestrator) collectPublicResources(ctx context.Context, scopes []Scope) ([]PublicResource, []string) {
	outcome := Collect(ctx, scopes, o.sctx.MaxConcurrency, func(ctx context.Context, scope Scope) ([]PublicResource, error) {
		client, err := o.sctx.Clients.Network(scope)
		if err != nil {
			return nil, err
		}
		return collectScopeExposure(ctx, client, scope)
	})
	return Merged(outcome), outcome.Warnings("exposure inventory")
}

// collectScopeExposure correlates public IPs with the NICs, load balancers,
// and application gateways that front them.
func collectScopeExposure(ctx context.Context, client NetworkClient, scope Scope) ([]PublicResource, error) {
	pips, err := client.PublicIPAddresses(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]PublicIPAddress, len(pips))
	for _, pip := range pips {
		if pip.IPAddress != "" {
			byID[pip.ID] = pip
		}
	}

	resources := make([]PublicResource, 0)

	nics, err := client.NetworkInterfaces(ctx)
	if err != nil {
		return nil, err
	}
	for _, nic := range nics {
		for _, pipID := range nic.PublicIPAddresses {
			pip, ok := byID[pipID]
			if !ok {
				continue
			}
			resource := PublicResource{
				ResourceID:     nic.ID,
				ResourceName:   nic.Name,
				ResourceType:   "NetworkInterface",
				PublicIP:       pip.IPAddress,
				Ports:          []int32{},
				Protocols:      []string{},
				SubscriptionID: scope,
				ResourceGroup:  pip.ResourceGroup,
			}
			if nic.VirtualMachineID != "" {
				resource.ResourceID = nic.VirtualMachineID
				resource.ResourceName = lastPathSegment(nic.VirtualMachineID)
				resource.ResourceType = "VirtualMachine"
			}
			resources = append(resources, resource)
		}
	}

	lbs, err := client.LoadBalancers(ctx)
	if err != nil {
		return nil, err
	}
	for _, lb := range lbs {
		for _, pipID := range lb.PublicIPAddresses {
			pip, ok := byID[pipID]
			if !ok {
				continue
			}
			resources = append(resources, PublicResource{
				ResourceID:     lb.ID,
				ResourceName:   lb.Name,
				ResourceType:   "LoadBalancer",
				PublicIP:       pip.IPAddress,
				Ports:          dedupePorts(lb.FrontendPorts),
				Protocols:      dedupeStrings(lb.Protocols),
				SubscriptionID: scope,
				ResourceGroup:  pip.ResourceGroup,
			})
		}
	}

	agws, err := client.ApplicationGateways(ctx)
	if err != nil {
		return nil, err
	}
	for _, agw := range agws {
		for _, pipID := range agw.PublicIPAddresses {
			pip, ok := byID[pipID]
			if !ok {
				continue
			}
			resources = append(resources, PublicResource{
				ResourceID:     agw.ID,
				ResourceName:   agw.Name,
				ResourceType:   "ApplicationGateway",
				PublicIP:       pip.IPAddress,
				Ports:          dedupePorts(agw.FrontendPorts),
				Protocols:      dedupeStrings(agw.Protocols),
				SubscriptionID: scope,
				ResourceGroup:  pip.ResourceGroup,
			})
		}
	}

	return resources, nil
}

type roleAnalysis struct {
	grants    []RoleGrant
	breakdown IdentityBreakdown
	groups    GrantGroups
}

// AnalyzeRoles collects role assignments across scopes, resolves the unique
// principals behind them, and classifies grants by identity type.
func (o *Orchestrator) AnalyzeRoles(ctx context.Context, scopes []Scope) ([]RoleGrant, IdentityBreakdown, GrantGroups, []string) {
	analysis, warnings := o.analyzeRoles(ctx, scopes)
	return analysis.grants, analysis.breakdown, analysis.groups, warnings
}

type scopeRoles struct {
	assignments []RoleAssignment
	roleNames   map[string]string
}

func (o *Orchestrator) analyzeRoles(ctx context.Context, scopes []Scope) (roleAnalysis, []string) {
	outcome := Collect(ctx, scopes, o.sctx.MaxConcurrency, func(ctx context.Context, scope Scope) (scopeRoles, error) {
		client, err := o.sctx.Clients.Authorization(scope)
		if err != nil {
			return scopeRoles{}, err
		}
		assignments, err := client.RoleAssignments(ctx)
		if err != nil {
			return scopeRoles{}, err
		}
		names, err := client.RoleDefinitionNames(ctx)
		if err != nil {
			// Name resolution degrades to definition-ID fallbacks.
			output.Warn("role definitions unavailable", "scope", string(scope), "error", err)
			names = map[string]string{}
		}
		return scopeRoles{assignments: assignments, roleNames: names}, nil
	})

	assignments := make([]RoleAssignment, 0)
	roleNames := make(map[string]string)
	idSet := make(map[string]bool)
	for _, scope := range sortedScopes(outcome.Succeeded) {
		part := outcome.Succeeded[scope]
		assignments = append(assignments, part.assignments...)
		for id, name := range part.roleNames {
			roleNames[id] = name
		}
		for _, a := range part.assignments {
			idSet[a.PrincipalID] = true
		}
	}

	principalIDs := make([]string, 0, len(idSet))
	for id := range idSet {
		principalIDs = append(principalIDs, id)
	}
	sort.Strings(principalIDs)

	resolver := o.sctx.Resolver()
	types := resolver.ResolveAll(ctx, principalIDs)
	breakdown, groups := ClassifyAssignments(assignments, roleNames, types, resolver.Principals())

	return roleAnalysis{
		grants:    groups.AllGrants(),
		breakdown: breakdown,
		groups:    groups,
	}, outcome.Warnings("role analysis")
}

// CollectPolicy gathers policy assignments and compliance states across the
// scope set.
func (o *Orchestrator) CollectPolicy(ctx context.Context, scopes []Scope) ([]PolicyAssignment, []ComplianceResult, []string) {
	assignments, ws1 := o.collectPolicyAssignments(ctx, scopes)
	compliance, ws2 := o.collectCompliance(ctx, scopes)
	return assignments, compliance, append(ws1, ws2...)
}

func (o *Orchestrator) collectPolicyAssignments(ctx context.Context, scopes []Scope) ([]PolicyAssignment, []string) {
	outcome := Collect(ctx, scopes, o.sctx.MaxConcurrency, func(ctx context.Context, scope Scope) ([]PolicyAssignment, error) {
		client, err := o.sctx.Clients.Policy(scope)
		if err != nil {
			return nil, err
		}
		return client.PolicyAssignments(ctx)
	})
	return Merged(outcome), outcome.Warnings("policy assignments")
}

func (o *Orchestrator) collectCompliance(ctx context.Context, scopes []Scope) ([]ComplianceResult, []string) {
	outcome := Collect(ctx, scopes, o.sctx.MaxConcurrency, func(ctx context.Context, scope Scope) ([]ComplianceResult, error) {
		client, err := o.sctx.Clients.Policy(scope)
		if err != nil {
			return nil, err
		}
		return client.ComplianceStates(ctx)
	})
	return Merged(outcome), outcome.Warnings("compliance states")
}

func (o *Orchestrator) collectSecureScore(ctx context.Context, scopes []Scope) (SecureScoreSummary, []string) {
	outcome := Collect(ctx, scopes, o.sctx.MaxConcurrency, func(ctx context.Context, scope Scope) ([]ControlScore, error) {
		client, err := o.sctx.Clients.Security(scope)
		if err != nil {
			return nil, err
		}
		return client.SecureScores(ctx)
	})

	summary := SecureScoreSummary{ControlScores: Merged(outcome)}
	for _, score := range summary.ControlScores {
		summary.CurrentScore += score.CurrentScore
		summary.MaxScore += score.MaxScore
	}
	if summary.MaxScore > 0 {
		summary.Percentage = summary.CurrentScore / summary.MaxScore * 100
	}
	return summary, outcome.Warnings("secure score")
}

func (o *Orchestrator) collectRecommendations(ctx context.Context, scopes []Scope) ([]Recommendation, []string) {
	outcome := Collect(ctx, scopes, o.sctx.MaxConcurrency, func(ctx context.Context, scope Scope) ([]Recommendation, error) {
		client, err := o.sctx.Clients.Security(scope)
		if err != nil {
			return nil, err
		}
		return client.Assessments(ctx)
	})
	return Merged(outcome), outcome.Warnings("recommendations")
}

func (o *Orchestrator) collectUsers(ctx context.Context) ([]UserAccount, error) {
	if o.sctx.Directory == nil {
		return []UserAccount{}, nil
	}
	return o.sctx.Directory.Users(ctx, maxUserPage)
}

// SummarizeCompliance tallies compliance results overall and per
// subscription. The subscription is read from the resource ID path.
func SummarizeCompliance(results []ComplianceResult) ComplianceSummary {
	summary := ComplianceSummary{BySubscription: make(map[Scope]ComplianceTally)}
	for _, result := range results {
		sub := Scope("unknown")
		if parts := strings.Split(result.ResourceID, "/"); len(parts) > 2 {
			sub = Scope(parts[2])
		}
		tally := summary.BySubscription[sub]
		tally.Total++
		if result.ComplianceState == "Compliant" {
			summary.Compliant++
			tally.Compliant++
		} else {
			summary.NonCompliant++
			tally.NonCompliant++
		}
		summary.BySubscription[sub] = tally
	}
	if total := summary.Compliant + summary.NonCompliant; total > 0 {
		summary.Percentage = float64(summary.Compliant) / float64(total) * 100
	}
	return summary
}

func lastPathSegment(id string) string {
	trimmed := strings.TrimRight(id, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func dedupePorts(ports []int32) []int32 {
	seen := make(map[int32]bool, len(ports))
	out := make([]int32, 0, len(ports))
	for _, p := range ports {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
