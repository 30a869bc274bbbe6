package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"

	"github.com/wardspan/azure-recon/internal/scan"
)

type authorizationClient struct {
	factory *armauthorization.ClientFactory
	scope   scan.Scope
}

func newAuthorizationClient(scope scan.Scope, cred azcore.TokenCredential) (*authorizationClient, error) {
	factory, err := armauthorization.NewClientFactory(string(scope), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("authorization client for %s: %w", scope, err)
	}
	return &authorizationClient{factory: factory, scope: scope}, nil
}

func (c *authorizationClient) RoleAssignments(ctx context.Context) ([]scan.RoleAssignment, error) {
	out := make([]scan.RoleAssignment, 0)
	pager := c.factory.NewRoleAssignmentsClient().NewListForSubscriptionPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing role assignments: %w", err)
		}
		for _, assignment := range page.Value {
			if assignment == nil || assignment.Properties == nil {
				continue
			}
			props := assignment.Properties
			out = append(out, scan.RoleAssignment{
				PrincipalID:      deref(props.PrincipalID),
				RoleDefinitionID: deref(props.RoleDefinitionID),
				Scope:            deref(props.Scope),
				SubscriptionID:   c.scope,
			})
		}
	}
	return out, nil
}

func (c *authorizationClient) RoleDefinitionNames(ctx context.Context) (map[string]string, error) {
	names := make(map[string]string)
	pager := c.factory.NewRoleDefinitionsClient().NewListPager("/subscriptions/"+string(c.scope), nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing role definitions: %w", err)
		}
		for _, def := range page.Value {
			if def == nil || def.ID == nil {
				continue
			}
			name := ""
			if def.Properties != nil {
				name = deref(def.Properties.RoleName)
			}
			if name == "" {
				name = deref(def.Name)
			}
			names[*def.ID] = name
		}
	}
	return names, nil
}
