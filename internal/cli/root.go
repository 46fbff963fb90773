package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "experiments",
	Short: "A/B test assignment and analysis engine",
	Long: `experiments manages A/B tests end to end: deterministic variant
assignment, exposure and conversion tracking, and statistical analysis
with winner detection and recommendations.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
