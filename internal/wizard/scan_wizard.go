package wizard

import (
	"fmt"
	"strings"
)

// ScanOptions captures all inputs collected by the interactive scan flow.
type ScanOptions struct {
	TenantID      string
	Subscriptions []string
	Format        string
	OutputPath    string
}

// SubscriptionChoice is one selectable subscription.
type SubscriptionChoice struct {
	ID   string
	Name string
}

// ReportFormats lists the renderers the scan command supports.
var ReportFormats = []string{"markdown", "json", "yaml"}

// ScanWizard drives the interactive scan setup flow.
type ScanWizard struct {
	prompter Prompter
}

// NewScanWizard returns a scan wizard; if p is nil, survey is used.
func NewScanWizard(p Prompter) *ScanWizard {
	if p == nil {
		p = NewSurveyPrompter()
	}
	return &ScanWizard{prompter: p}
}

// Run collects scan input. detectedTenant pre-fills the tenant prompt and
// choices populates the subscription picker; all subscriptions are selected
// by default.
func (w *ScanWizard) Run(detectedTenant string, choices []SubscriptionChoice) (*ScanOptions, error) {
	opts := &ScanOptions{}
	var err error

	opts.TenantID, err = w.prompter.Input("Tenant ID (UUID)", detectedTenant, ValidateTenantID)
	if err != nil {
		return nil, err
	}

	if len(choices) > 0 {
		labels := make([]string, 0, len(choices))
		byLabel := make(map[string]string, len(choices))
		for _, c := range choices {
			label := c.ID
			if c.Name != "" {
				label = fmt.Sprintf("%s (%s)", c.ID, c.Name)
			}
			labels = append(labels, label)
			byLabel[label] = c.ID
		}

		selected, err := w.prompter.MultiSelect("Subscriptions to scan", labels, labels)
		if err != nil {
			return nil, err
		}
		for _, label := range selected {
			opts.Subscriptions = append(opts.Subscriptions, byLabel[label])
		}
	}

	opts.Format, err = w.prompter.Select("Report format", ReportFormats, "markdown")
	if err != nil {
		return nil, err
	}

	save, err := w.prompter.Confirm("Save report to a file?", false)
	if err != nil {
		return nil, err
	}
	if save {
		opts.OutputPath, err = w.prompter.Input("Output path", defaultOutputPath(opts.Format), ValidateNonEmpty)
		if err != nil {
			return nil, err
		}
	}

	return opts, nil
}

func defaultOutputPath(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "azrecon-report.json"
	case "yaml":
		return "azrecon-report.yaml"
	default:
		return "azrecon-report.md"
	}
}
