package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/security/armsecurity"

	"github.com/wardspan/azure-recon/internal/scan"
)

type securityClient struct {
	scores      *armsecurity.SecureScoresClient
	assessments *armsecurity.AssessmentsClient
	scope       scan.Scope
}

func newSecurityClient(scope scan.Scope, cred azcore.TokenCredential) (*securityClient, error) {
	scores, err := armsecurity.NewSecureScoresClient(string(scope), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("secure scores client for %s: %w", scope, err)
	}
	assessments, err := armsecurity.NewAssessmentsClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("assessments client for %s: %w", scope, err)
	}
	return &securityClient{scores: scores, assessments: assessments, scope: scope}, nil
}

func (c *securityClient) SecureScores(ctx context.Context) ([]scan.ControlScore, error) {
	out := make([]scan.ControlScore, 0)
	pager := c.scores.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing secure scores: %w", err)
		}
		for _, item := range page.Value {
			if item == nil || item.Properties == nil {
				continue
			}
			props := item.Properties
			score := scan.ControlScore{
				SubscriptionID: c.scope,
				ScoreName:      deref(item.Name),
				DisplayName:    deref(props.DisplayName),
			}
			if props.Score != nil {
				score.CurrentScore = derefFloat(props.Score.Current)
				if props.Score.Max != nil {
					score.MaxScore = float64(*props.Score.Max)
				}
				score.Percentage = derefFloat(props.Score.Percentage)
			}
			out = append(out, score)
		}
	}
	return out, nil
}

func (c *securityClient) Assessments(ctx context.Context) ([]scan.Recommendation, error) {
	out := make([]scan.Recommendation, 0)
	pager := c.assessments.NewListPager("/subscriptions/"+string(c.scope), nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing assessments: %w", err)
		}
		for _, item := range page.Value {
			if item == nil || item.Properties == nil {
				continue
			}
			props := item.Properties
			rec := scan.Recommendation{
				ID:             deref(item.ID),
				Name:           deref(props.DisplayName),
				SubscriptionID: c.scope,
			}
			if props.Status != nil {
				if props.Status.Code != nil {
					rec.State = string(*props.Status.Code)
				}
				rec.Description = deref(props.Status.Description)
			}
			if props.Metadata != nil {
				if props.Metadata.Severity != nil {
					rec.Severity = string(*props.Metadata.Severity)
				}
				if len(props.Metadata.Categories) > 0 && props.Metadata.Categories[0] != nil {
					rec.Category = string(*props.Metadata.Categories[0])
				}
			}
			out = append(out, rec)
		}
	}
	return out, nil
}
