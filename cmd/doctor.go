package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardspan/azure-recon/internal/doctor"
	"github.com/wardspan/azure-recon/internal/output"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check prerequisites and environment readiness",
	Long: `Verify that the Azure CLI, session, Microsoft Graph access, and the
resource providers the scan reads from are correctly configured.

Each check reports ✅ (pass), ❌ (fail), or ⚠️ (warning) with an
actionable fix suggestion.

Exit code 0 if all critical checks pass, 1 otherwise.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	output.Init(verbosity > 0, jsonOutput)

	ctx := context.Background()
	executor := doctor.NewRealExecutor()
	summary := doctor.RunAll(ctx, executor)

	doctor.PrintResults(summary)

	if summary.HasFailure {
		os.Exit(1)
	}
	return nil
}
