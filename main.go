// azrecon – Azure tenant security posture scanner
// Read-only CLI: fans out across subscriptions, classifies NSG and identity
// risk, and renders a unified posture report.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/wardspan/azure-recon/cmd"
	"github.com/wardspan/azure-recon/internal/audit"
	"github.com/wardspan/azure-recon/internal/exitcode"
)

func main() {
	start := time.Now()
	if err := cmd.Execute(); err != nil {
		code := exitcode.Of(err)
		event := audit.BuildEvent(os.Args, "failure", code, time.Since(start))
		_ = audit.Write(event)
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(code)
	}

	event := audit.BuildEvent(os.Args, "success", exitcode.OK, time.Since(start))
	_ = audit.Write(event)
}
