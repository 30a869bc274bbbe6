package scan

import "strings"

const unknownRoleName = "Unknown Role"

// ClassifyAssignments buckets raw role assignments by the identity type of
// their principal and aggregates per-role counts.
//
// Pure aggregation: no assignment is dropped or double-counted, so the
// breakdown's total always equals len(assignments). Missing role names fall
// back to the last path segment of the definition ID; missing principal
// types fall back to Unresolved.
func ClassifyAssignments(assignments []RoleAssignment, roleNames map[string]string, principalTypes map[string]IdentityType, principals map[string]Principal) (IdentityBreakdown, GrantGroups) {
	breakdown := make(IdentityBreakdown, len(IdentityTypes))
	groups := GrantGroups{
		Users:             make([]RoleGrant, 0),
		ServicePrincipals: make([]RoleGrant, 0),
		ManagedIdentities: make([]RoleGrant, 0),
		Groups:            make([]RoleGrant, 0),
		Unresolved:        make([]RoleGrant, 0),
	}

	for _, assignment := range assignments {
		identityType, ok := principalTypes[assignment.PrincipalID]
		if !ok {
			identityType = IdentityUnresolved
		}
		roleName := resolveRoleName(assignment.RoleDefinitionID, roleNames)

		stats := breakdown.stats(identityType)
		stats.Count++
		stats.RoleNameCounts[roleName]++

		grant := RoleGrant{
			PrincipalID:    assignment.PrincipalID,
			PrincipalType:  identityType,
			RoleName:       roleName,
			Scope:          assignment.Scope,
			SubscriptionID: assignment.SubscriptionID,
		}
		if p, ok := principals[assignment.PrincipalID]; ok {
			grant.PrincipalName = p.DisplayName
		}

		switch identityType {
		case IdentityUser:
			groups.Users = append(groups.Users, grant)
		case IdentityServicePrincipal:
			groups.ServicePrincipals = append(groups.ServicePrincipals, grant)
		case IdentityManagedIdentity:
			groups.ManagedIdentities = append(groups.ManagedIdentities, grant)
		case IdentityGroup:
			groups.Groups = append(groups.Groups, grant)
		default:
			groups.Unresolved = append(groups.Unresolved, grant)
		}
	}

	return breakdown, groups
}

// AllGrants flattens the five buckets in classification order.
func (g GrantGroups) AllGrants() []RoleGrant {
	out := make([]RoleGrant, 0, len(g.Users)+len(g.ServicePrincipals)+len(g.ManagedIdentities)+len(g.Groups)+len(g.Unresolved))
	out = append(out, g.Users...)
	out = append(out, g.ServicePrincipals...)
	out = append(out, g.ManagedIdentities...)
	out = append(out, g.Groups...)
	out = append(out, g.Unresolved...)
	return out
}

func (b IdentityBreakdown) stats(identityType IdentityType) *IdentityStats {
	stats, ok := b[identityType]
	if !ok {
		stats = &IdentityStats{RoleNameCounts: make(map[string]int)}
		b[identityType] = stats
	}
	return stats
}

func resolveRoleName(definitionID string, roleNames map[string]string) string {
	if name, ok := roleNames[definitionID]; ok && name != "" {
		return name
	}
	trimmed := strings.TrimRight(definitionID, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" {
		return unknownRoleName
	}
	return trimmed
}
