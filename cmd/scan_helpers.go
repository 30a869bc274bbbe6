package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/spf13/viper"

	"github.com/wardspan/azure-recon/internal/azauth"
	"github.com/wardspan/azure-recon/internal/azure"
	"github.com/wardspan/azure-recon/internal/graph"
	"github.com/wardspan/azure-recon/internal/output"
	"github.com/wardspan/azure-recon/internal/scan"
)

// resolveTenantID resolves the target tenant from the flag, config, or the
// local az CLI session, in that order.
func resolveTenantID(flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(viper.GetString("tenant_id")); v != "" {
		return v, nil
	}
	detected, err := azauth.DetectTenantID()
	if err != nil {
		return "", fmt.Errorf("no tenant ID given and auto-detection failed: %w (pass --tenant-id)", err)
	}
	output.Debug("tenant auto-detected", "tenant", detected)
	return detected, nil
}

// authenticate logs in to the tenant and verifies the issued token is bound
// to it. A token minted for another tenant aborts the run.
func authenticate(ctx context.Context, tenantID string) (*azauth.Credential, error) {
	cred, err := azauth.Login(ctx, azauth.Options{
		TenantID:    tenantID,
		Interactive: !effectiveCIMode(),
		Verbose:     verbosity > 0,
	})
	if err != nil {
		return nil, err
	}

	token, err := cred.TokenCredential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{"https://management.azure.com/.default"},
	})
	if err != nil {
		return nil, fmt.Errorf("acquiring ARM token: %w", err)
	}
	if err := azauth.ValidateTenantBinding(token.Token, tenantID); err != nil {
		return nil, err
	}
	return cred, nil
}

// resolveScopes determines the subscriptions to scan: explicit --subscription
// values win, then --management-group descendants, then every enabled
// subscription the credential can see.
func resolveScopes(ctx context.Context, cred *azauth.Credential, subscriptions []string, managementGroup string) ([]scan.Scope, error) {
	if len(subscriptions) > 0 {
		scopes := make([]scan.Scope, 0, len(subscriptions))
		for _, sub := range subscriptions {
			scopes = append(scopes, scan.Scope(strings.TrimSpace(sub)))
		}
		return scopes, nil
	}

	if managementGroup != "" {
		scopes, err := azure.DescendantSubscriptions(ctx, cred.TokenCredential, managementGroup)
		if err != nil {
			return nil, fmt.Errorf("listing management group %s: %w", managementGroup, err)
		}
		if len(scopes) == 0 {
			return nil, fmt.Errorf("management group %s has no subscriptions", managementGroup)
		}
		return scopes, nil
	}

	subs, err := azure.ListSubscriptions(ctx, cred.TokenCredential)
	if err != nil {
		return nil, err
	}
	scopes := azure.EnabledScopes(subs)
	if len(scopes) == 0 {
		return nil, fmt.Errorf("no enabled subscriptions visible to this credential")
	}
	return scopes, nil
}

// newScanSession authenticates, resolves scopes, and assembles a per-run
// scan context. Every scan-family command starts here.
func newScanSession(ctx context.Context, tenantFlag string, subscriptions []string, managementGroup string, withDirectory bool) (*scan.ScanContext, []scan.Scope, error) {
	tenantID, err := resolveTenantID(tenantFlag)
	if err != nil {
		return nil, nil, err
	}
	cred, err := authenticate(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	scopes, err := resolveScopes(ctx, cred, subscriptions, managementGroup)
	if err != nil {
		return nil, nil, err
	}

	var directory scan.DirectoryService
	if withDirectory {
		directory = graph.NewClient(cred.TokenCredential)
	}
	sctx := scan.NewScanContext(tenantID, cred, azure.NewFactory(cred.TokenCredential), directory)
	return sctx, scopes, nil
}

// writeReport writes rendered report bytes to path, or stdout when path is
// empty.
func writeReport(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	output.Success("Report written to " + path)
	return nil
}
