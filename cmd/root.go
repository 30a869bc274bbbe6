// Package cmd implements the Cobra-based CLI for azrecon.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	verbosity  int
	jsonOutput bool // --json flag for machine-readable output
	ciMode     bool
)

// rootCmd is the top-level command for azrecon.
var rootCmd = &cobra.Command{
	Use:   "azrecon",
	Short: "Azure tenant security posture scanner",
	Long: `azrecon is a read-only CLI that aggregates the security posture of an
Azure tenant into a single report.

It fans out across every enabled subscription and collects:
  - Network Security Groups, classified Low/Medium/High by inbound exposure
  - Internet-reachable resources (VMs, load balancers, app gateways)
  - RBAC role assignments, bucketed by identity type via Microsoft Graph
  - Azure Policy assignments and compliance states
  - Defender for Cloud secure scores and recommendations
  - Tenant user inventory

azrecon never mutates Azure resources; Reader, Security Reader, and
Directory.Read.All permissions are sufficient.

Workflow: doctor → scan → history`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: azrecon.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON (machine-readable)")
	rootCmd.PersistentFlags().BoolVar(&ciMode, "ci", false, "strict non-interactive mode (fails when required inputs are missing)")

	_ = viper.BindPFlag("ci", rootCmd.PersistentFlags().Lookup("ci"))
}

func effectiveCIMode() bool {
	if ciMode {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(os.Getenv("CI")), "true")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("azrecon")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}
	viper.SetEnvPrefix("AZRECON")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbosity > 0 {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
