package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"

	"github.com/wardspan/azure-recon/internal/scan"
)

// ListSubscriptions enumerates the subscriptions visible to the credential.
// The call is retried with backoff since it is the first ARM round trip of a
// scan and transient throttling here would sink the whole run.
func ListSubscriptions(ctx context.Context, cred azcore.TokenCredential) ([]scan.Subscription, error) {
	client, err := armsubscriptions.NewClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("subscriptions client: %w", err)
	}
	return Retry(DefaultRetryConfig(), func() ([]scan.Subscription, error) {
		out := make([]scan.Subscription, 0)
		pager := client.NewListPager(nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("listing subscriptions: %w", err)
			}
			for _, sub := range page.Value {
				if sub == nil {
					continue
				}
				converted := scan.Subscription{
					ID:       scan.Scope(deref(sub.SubscriptionID)),
					TenantID: deref(sub.TenantID),
				}
				converted.DisplayName = deref(sub.DisplayName)
				if sub.State != nil {
					converted.State = string(*sub.State)
				}
				out = append(out, converted)
			}
		}
		return out, nil
	})
}

// EnabledScopes filters subscriptions down to scannable scopes.
func EnabledScopes(subs []scan.Subscription) []scan.Scope {
	scopes := make([]scan.Scope, 0, len(subs))
	for _, sub := range subs {
		if strings.EqualFold(sub.State, "Enabled") || sub.State == "" {
			scopes = append(scopes, sub.ID)
		}
	}
	return scopes
}
