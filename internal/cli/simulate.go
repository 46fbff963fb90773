package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
	"github.com/AFA55/pontifex-industries-sub002/internal/util"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <test-id>",
	Short: "Dry-run the bucketing for a test",
	Long: `Hash a batch of synthetic subject ids through a test's allocation and
variant splits without persisting anything. Useful for sanity-checking a
draft before it goes live.

Examples:
  experiments simulate 3f2a... --subjects 50000`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

var simulateSubjects int

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().IntVar(&simulateSubjects, "subjects", 10000, "Number of synthetic subjects to hash")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	testID := args[0]
	return withApp(func(ctx context.Context, app *AppContext) error {
		test, err := app.Engine.GetTest(ctx, testID)
		if err != nil {
			return err
		}

		counts := make(map[string]int, len(test.Variants))
		included := 0
		for i := 0; i < simulateSubjects; i++ {
			subject := fmt.Sprintf("sim-subject-%d", i)
			if domain.Bucket(subject, test.ID) >= test.TrafficAllocation/100 {
				continue
			}
			included++
			variant := test.VariantForBucket(domain.VariantBucket(subject, test.ID))
			counts[variant.ID]++
		}

		fmt.Printf("Simulated %d subjects against %q\n", simulateSubjects, test.Name)
		fmt.Printf("Included: %s (%s, allocation %.0f%%)\n\n",
			util.FormatNumber(int64(included)), util.FormatPercent(pct(included, simulateSubjects)), test.TrafficAllocation)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VARIANT\tDECLARED\tOBSERVED\tSUBJECTS")
		for _, v := range test.Variants {
			fmt.Fprintf(w, "%s\t%.1f%%\t%.1f%%\t%d\n",
				v.Name, v.TrafficSplit, pct(counts[v.ID], included), counts[v.ID])
		}
		return w.Flush()
	})
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
