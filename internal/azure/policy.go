package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/policyinsights/armpolicyinsights"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armpolicy"

	"github.com/wardspan/azure-recon/internal/scan"
)

type policyClient struct {
	assignments *armpolicy.AssignmentsClient
	states      *armpolicyinsights.PolicyStatesClient
	scope       scan.Scope
}

func newPolicyClient(scope scan.Scope, cred azcore.TokenCredential) (*policyClient, error) {
	assignments, err := armpolicy.NewAssignmentsClient(string(scope), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("policy assignments client for %s: %w", scope, err)
	}
	states, err := armpolicyinsights.NewPolicyStatesClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("policy states client for %s: %w", scope, err)
	}
	return &policyClient{assignments: assignments, states: states, scope: scope}, nil
}

func (c *policyClient) PolicyAssignments(ctx context.Context) ([]scan.PolicyAssignment, error) {
	out := make([]scan.PolicyAssignment, 0)
	pager := c.assignments.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing policy assignments: %w", err)
		}
		for _, assignment := range page.Value {
			if assignment == nil {
				continue
			}
			converted := scan.PolicyAssignment{
				ID:   deref(assignment.ID),
				Name: deref(assignment.Name),
			}
			if props := assignment.Properties; props != nil {
				converted.DisplayName = deref(props.DisplayName)
				converted.PolicyDefinitionID = deref(props.PolicyDefinitionID)
				converted.Scope = deref(props.Scope)
				if props.EnforcementMode != nil {
					converted.EnforcementMode = string(*props.EnforcementMode)
				}
			}
			out = append(out, converted)
		}
	}
	return out, nil
}

func (c *policyClient) ComplianceStates(ctx context.Context) ([]scan.ComplianceResult, error) {
	out := make([]scan.ComplianceResult, 0)
	pager := c.states.NewListQueryResultsForSubscriptionPager(
		armpolicyinsights.PolicyStatesResourceLatest, string(c.scope), nil, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying policy states: %w", err)
		}
		for _, state := range page.Value {
			if state == nil {
				continue
			}
			out = append(out, scan.ComplianceResult{
				PolicyAssignmentID:   deref(state.PolicyAssignmentID),
				PolicyAssignmentName: deref(state.PolicyAssignmentName),
				ResourceID:           deref(state.ResourceID),
				ComplianceState:      deref(state.ComplianceState),
				ResourceType:         deref(state.ResourceType),
				ResourceLocation:     deref(state.ResourceLocation),
			})
		}
	}
	return out, nil
}
