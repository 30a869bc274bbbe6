package wizard

import (
	"fmt"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPrompter struct {
	answers map[string]interface{}
	calls   []string
	errAt   string
}

func (m *mockPrompter) Input(label, defaultValue string, _ survey.Validator) (string, error) {
	m.calls = append(m.calls, label)
	if m.errAt == label {
		return "", ErrCancelled
	}
	if v, ok := m.answers[label]; ok {
		return fmt.Sprintf("%v", v), nil
	}
	return defaultValue, nil
}

func (m *mockPrompter) Select(label string, _ []string, defaultValue string) (string, error) {
	m.calls = append(m.calls, label)
	if m.errAt == label {
		return "", ErrCancelled
	}
	if v, ok := m.answers[label]; ok {
		return fmt.Sprintf("%v", v), nil
	}
	return defaultValue, nil
}

func (m *mockPrompter) Confirm(label string, defaultValue bool) (bool, error) {
	m.calls = append(m.calls, label)
	if m.errAt == label {
		return false, ErrCancelled
	}
	if v, ok := m.answers[label]; ok {
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}
	return defaultValue, nil
}

func (m *mockPrompter) MultiSelect(label string, options []string, defaults []string) ([]string, error) {
	m.calls = append(m.calls, label)
	if m.errAt == label {
		return nil, ErrCancelled
	}
	if v, ok := m.answers[label]; ok {
		if s, ok := v.([]string); ok {
			return s, nil
		}
	}
	return defaults, nil
}

func TestValidateTenantID(t *testing.T) {
	err := ValidateTenantID("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee")
	require.NoError(t, err)

	err = ValidateTenantID("not-a-uuid")
	require.Error(t, err)
}

func TestValidateNonEmpty(t *testing.T) {
	require.NoError(t, ValidateNonEmpty("report.md"))
	require.Error(t, ValidateNonEmpty("   "))
}

func TestScanWizardRun_DefaultsSelectEverything(t *testing.T) {
	mock := &mockPrompter{answers: map[string]interface{}{}}
	choices := []SubscriptionChoice{
		{ID: "sub-1", Name: "Production"},
		{ID: "sub-2", Name: "Sandbox"},
	}

	opts, err := NewScanWizard(mock).Run("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee", choices)
	require.NoError(t, err)
	require.NotNil(t, opts)

	assert.Equal(t, "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee", opts.TenantID)
	assert.Equal(t, []string{"sub-1", "sub-2"}, opts.Subscriptions)
	assert.Equal(t, "markdown", opts.Format)
	assert.Empty(t, opts.OutputPath, "no output path unless the user opts in")

	expected := []string{
		"Tenant ID (UUID)",
		"Subscriptions to scan",
		"Report format",
		"Save report to a file?",
	}
	assert.Equal(t, expected, mock.calls)
}

func TestScanWizardRun_SubscriptionLabelsMapBackToIDs(t *testing.T) {
	mock := &mockPrompter{answers: map[string]interface{}{
		"Subscriptions to scan": []string{"sub-2 (Sandbox)"},
	}}
	choices := []SubscriptionChoice{
		{ID: "sub-1", Name: "Production"},
		{ID: "sub-2", Name: "Sandbox"},
	}

	opts, err := NewScanWizard(mock).Run("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee", choices)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-2"}, opts.Subscriptions)
}

func TestScanWizardRun_NoChoicesSkipsPicker(t *testing.T) {
	mock := &mockPrompter{answers: map[string]interface{}{}}

	opts, err := NewScanWizard(mock).Run("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee", nil)
	require.NoError(t, err)
	assert.Empty(t, opts.Subscriptions)

	for _, call := range mock.calls {
		assert.NotEqual(t, "Subscriptions to scan", call)
	}
}

func TestScanWizardRun_SaveReportPromptsForPath(t *testing.T) {
	mock := &mockPrompter{answers: map[string]interface{}{
		"Report format":          "json",
		"Save report to a file?": true,
	}}

	opts, err := NewScanWizard(mock).Run("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee", nil)
	require.NoError(t, err)
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "azrecon-report.json", opts.OutputPath)
}

func TestScanWizardRun_CancelPropagates(t *testing.T) {
	mock := &mockPrompter{errAt: "Report format"}

	_, err := NewScanWizard(mock).Run("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee", nil)
	require.ErrorIs(t, err, ErrCancelled)
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "azrecon-report.md", defaultOutputPath("markdown"))
	assert.Equal(t, "azrecon-report.json", defaultOutputPath("JSON"))
	assert.Equal(t, "azrecon-report.yaml", defaultOutputPath("yaml"))
}
