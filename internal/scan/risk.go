package scan

import (
	"fmt"
	"strconv"
	"strings"
)

// internetPrefixes are source prefixes treated as "open to the Internet".
var internetPrefixes = map[string]bool{
	"*":         true,
	"0.0.0.0/0": true,
	"Internet":  true,
}

// dangerousPort maps a well-known sensitive port to its service name.
// Kept as an ordered slice so classification is deterministic.
type dangerousPort struct {
	port    string
	service string
}

var dangerousPorts = []dangerousPort{
	{"22", "SSH"},
	{"3389", "RDP"},
	{"1433", "SQL Server"},
	{"3306", "MySQL"},
	{"5432", "PostgreSQL"},
	{"6379", "Redis"},
	{"27017", "MongoDB"},
	{"5985", "WinRM HTTP"},
	{"5986", "WinRM HTTPS"},
	{"135", "RPC Endpoint Mapper"},
	{"445", "SMB"},
}

// broadRangeThreshold is the port span above which a range counts as broad.
const broadRangeThreshold = 100

// AssessRules classifies an NSG rule set for network exposure risk. Pure and
// total: never fails, and identical input yields identical output.
//
// The classifier evaluates every rule independently; it does not simulate
// first-match-wins firewall precedence. A risky Allow rule is flagged even
// when a higher-priority Deny would shadow it, so the verdict reports latent
// risk rather than effective reachability.
func AssessRules(rules []SecurityRule) RiskAssessment {
	assessment := RiskAssessment{
		Level:      RiskLow,
		RiskyRules: make([]SecurityRule, 0),
		Reasons:    make([]string, 0),
	}
	seen := make(map[string]bool)

	addReason := func(reason string) {
		if !seen[reason] {
			seen[reason] = true
			assessment.Reasons = append(assessment.Reasons, reason)
		}
	}

	for _, rule := range rules {
		if rule.Access != "Allow" || rule.Direction != "Inbound" || !internetPrefixes[rule.SourcePrefix] {
			continue
		}

		dest := rule.DestinationPortRange

		// Note: the dangerous-port check is a substring probe, so "22"
		// matches "1220". Known false-positive behavior, preserved so risk
		// verdicts stay comparable across scans.
		if svc, port, ok := matchDangerousPort(dest); ok {
			addReason(fmt.Sprintf("Allows %s (%s) from Internet", svc, port))
			assessment.Level = RiskHigh
			assessment.RiskyRules = append(assessment.RiskyRules, rule)
			continue
		}

		if dest == "*" || dest == "0-65535" {
			addReason("Allows ALL ports from Internet")
			assessment.Level = RiskHigh
			assessment.RiskyRules = append(assessment.RiskyRules, rule)
			continue
		}

		if strings.Contains(dest, "-") {
			start, end, ok := parsePortRange(dest)
			if !ok {
				// Only unparseable ranges are skipped entirely.
				continue
			}
			if end-start > broadRangeThreshold {
				addReason(fmt.Sprintf("Allows broad port range (%s) from Internet", dest))
				assessment.Level = assessment.Level.Max(RiskMedium)
				assessment.RiskyRules = append(assessment.RiskyRules, rule)
				continue
			}
			// Narrow ranges fall through to the generic exposure branch.
		}

		// Generic exposure fallback for the first otherwise-unclassified
		// qualifying rule.
		if assessment.Level == RiskLow {
			addReason(fmt.Sprintf("Allows port %s from Internet", dest))
			assessment.Level = RiskMedium
			assessment.RiskyRules = append(assessment.RiskyRules, rule)
		}
	}

	return assessment
}

// AssessSecurityGroup classifies one NSG snapshot for a subscription.
func AssessSecurityGroup(group SecurityGroupConfig, scope Scope) SecurityGroupAssessment {
	return SecurityGroupAssessment{
		ID:             group.ID,
		Name:           group.Name,
		Location:       group.Location,
		ResourceGroup:  group.ResourceGroup,
		SubscriptionID: scope,
		Rules:          group.Rules,
		RiskAssessment: AssessRules(group.Rules),
	}
}

func matchDangerousPort(dest string) (service, port string, ok bool) {
	for _, dp := range dangerousPorts {
		if strings.Contains(dest, dp.port) {
			return dp.service, dp.port, true
		}
	}
	return "", "", false
}

func parsePortRange(dest string) (start, end int, ok bool) {
	parts := strings.SplitN(dest, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}
