package report

import (
	"encoding/json"

	"github.com/wardspan/azure-recon/internal/scan"
)

// RenderJSON renders the snapshot as indented JSON bytes.
func RenderJSON(snapshot *scan.ScanSnapshot) ([]byte, error) {
	return json.MarshalIndent(snapshot, "", "  ")
}
