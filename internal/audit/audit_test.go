package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildEvent_InfersFieldsFromArgs(t *testing.T) {
	event := BuildEvent([]string{"azrecon", "scan", "--tenant-id", "contoso", "--subscription", "sub-1"}, "failure", 4, 1500*time.Millisecond)

	assert.Equal(t, "scan", event.Operation)
	assert.Equal(t, "contoso", event.Tenant)
	assert.Equal(t, "sub-1", event.Subscription)
	assert.Equal(t, 4, event.ExitCode)
	assert.Equal(t, int64(1500), event.DurationMs)
}

func TestBuildEvent_SkipsFlagsWhenInferringOperation(t *testing.T) {
	event := BuildEvent([]string{"azrecon", "--json", "nsgs"}, "success", 0, time.Second)
	assert.Equal(t, "nsgs", event.Operation)
}

func TestBuildEvent_RootWhenNoSubcommand(t *testing.T) {
	event := BuildEvent([]string{"azrecon"}, "success", 0, 0)
	assert.Equal(t, "root", event.Operation)
	assert.Empty(t, event.Tenant)
}
