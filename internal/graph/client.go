// Package graph is a minimal Microsoft Graph REST client covering the
// directory lookups the scan engine needs. It deliberately avoids a full SDK;
// the three object reads and one user listing below are the entire surface.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/wardspan/azure-recon/internal/scan"
)

const (
	baseURL    = "https://graph.microsoft.com/v1.0"
	tokenScope = "https://graph.microsoft.com/.default"
)

// Doer issues HTTP requests. *http.Client satisfies it; tests inject a stub.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to Microsoft Graph using a bearer token minted from the same
// credential that backs the ARM clients.
type Client struct {
	cred azcore.TokenCredential
	doer Doer
	base string
}

// NewClient builds a Graph client over a resolved credential.
func NewClient(cred azcore.TokenCredential) *Client {
	return &Client{
		cred: cred,
		doer: &http.Client{Timeout: 30 * time.Second},
		base: baseURL,
	}
}

// directoryObject mirrors the subset of Graph object fields the engine reads.
type directoryObject struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"displayName"`
	UserPrincipalName string   `json:"userPrincipalName"`
	Mail              string   `json:"mail"`
	UserType          string   `json:"userType"`
	Tags              []string `json:"tags"`
}

type listResponse struct {
	Value []directoryObject `json:"value"`
}

// ServicePrincipal fetches one service principal by object ID.
func (c *Client) ServicePrincipal(ctx context.Context, id string) (*scan.DirectoryObject, error) {
	return c.getObject(ctx, "servicePrincipals", id)
}

// User fetches one user by object ID.
func (c *Client) User(ctx context.Context, id string) (*scan.DirectoryObject, error) {
	return c.getObject(ctx, "users", id)
}

// Group fetches one group by object ID.
func (c *Client) Group(ctx context.Context, id string) (*scan.DirectoryObject, error) {
	return c.getObject(ctx, "groups", id)
}

// Users lists tenant users, at most top entries.
func (c *Client) Users(ctx context.Context, top int) ([]scan.UserAccount, error) {
	query := url.Values{}
	query.Set("$top", fmt.Sprintf("%d", top))
	query.Set("$select", "id,displayName,userPrincipalName,mail,userType")

	body, err := c.get(ctx, fmt.Sprintf("%s/users?%s", c.base, query.Encode()))
	if err != nil {
		return nil, err
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decoding user list: %w", err)
	}

	users := make([]scan.UserAccount, 0, len(list.Value))
	for _, obj := range list.Value {
		users = append(users, scan.UserAccount{
			ID:                obj.ID,
			DisplayName:       obj.DisplayName,
			UserPrincipalName: obj.UserPrincipalName,
			Mail:              obj.Mail,
			IsGuest:           obj.UserType == "Guest",
		})
	}
	return users, nil
}

func (c *Client) getObject(ctx context.Context, resource, id string) (*scan.DirectoryObject, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/%s", c.base, resource, url.PathEscape(id)))
	if err != nil {
		return nil, err
	}

	var obj directoryObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", resource, id, err)
	}
	return &scan.DirectoryObject{
		ID:                obj.ID,
		DisplayName:       obj.DisplayName,
		UserPrincipalName: obj.UserPrincipalName,
		Mail:              obj.Mail,
		UserType:          obj.UserType,
		Tags:              obj.Tags,
	}, nil
}

// get performs one authenticated GET. A 404 maps to scan.ErrNotFound; token
// acquisition and transport failures map to scan.ErrDirectoryUnavailable so
// the resolver can distinguish a miss from an outage.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	token, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{tokenScope}})
	if err != nil {
		return nil, fmt.Errorf("%w: acquiring token: %v", scan.ErrDirectoryUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scan.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, scan.ErrNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: graph returned %d", scan.ErrDirectoryUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("graph returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
