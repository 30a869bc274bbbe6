package report

import (
	"gopkg.in/yaml.v3"

	"github.com/wardspan/azure-recon/internal/scan"
)

// RenderYAML renders the snapshot as YAML bytes.
func RenderYAML(snapshot *scan.ScanSnapshot) ([]byte, error) {
	return yaml.Marshal(snapshot)
}
