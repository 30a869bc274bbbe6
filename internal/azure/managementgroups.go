package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/managementgroups/armmanagementgroups"

	"github.com/wardspan/azure-recon/internal/scan"
)

// DescendantSubscriptions walks a management group and returns every
// subscription scope beneath it, at any depth.
func DescendantSubscriptions(ctx context.Context, cred azcore.TokenCredential, groupID string) ([]scan.Scope, error) {
	client, err := armmanagementgroups.NewClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("management groups client: %w", err)
	}
	scopes := make([]scan.Scope, 0)
	pager := client.NewGetDescendantsPager(groupID, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("walking management group %s: %w", groupID, err)
		}
		for _, item := range page.Value {
			if item == nil || item.Type == nil || item.Name == nil {
				continue
			}
			if strings.HasSuffix(strings.ToLower(*item.Type), "subscriptions") {
				scopes = append(scopes, scan.Scope(*item.Name))
			}
		}
	}
	return scopes, nil
}
