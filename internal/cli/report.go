package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
	"github.com/AFA55/pontifex-industries-sub002/internal/util"
)

var reportCmd = &cobra.Command{
	Use:   "report <test-id>",
	Short: "Analyze a test and print its results",
	Long: `Compute per-variant statistics, detect the winner, and print insights
and recommendations. The analysis runs on live data, so the report can be
pulled at any point in the test's life.

Examples:
  experiments report 3f2a...
  experiments report 3f2a... --json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var reportJSON bool

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Emit the raw results as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	testID := args[0]
	return withApp(func(ctx context.Context, app *AppContext) error {
		test, err := app.Engine.GetTest(ctx, testID)
		if err != nil {
			return err
		}
		results, err := app.Engine.AnalyzeTest(ctx, testID)
		if err != nil {
			return err
		}

		if reportJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		renderReport(test, results)
		return nil
	})
}

func renderReport(test *domain.Test, results *domain.TestResults) {
	fmt.Println()
	fmt.Printf("  Test: %s\n", test.Name)
	fmt.Printf("  ======%s\n", repeatChar('=', len(test.Name)))
	fmt.Println()

	if test.Description != "" {
		fmt.Printf("  Description:    %s\n", test.Description)
	}
	fmt.Printf("  Status:         %s\n", test.Status)
	fmt.Printf("  Primary metric: %s\n", test.PrimaryMetric)
	if !results.StartDate.IsZero() {
		fmt.Printf("  Started:        %s\n", results.StartDate.Format("2006-01-02"))
	}
	if results.EndDate != nil {
		fmt.Printf("  Ended:          %s\n", results.EndDate.Format("2006-01-02"))
	}
	fmt.Printf("  Participants:   %s\n", util.FormatNumber(int64(results.TotalParticipants)))
	fmt.Println()

	fmt.Printf("  Variants\n")
	fmt.Printf("  --------\n")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tN\tMETRIC\tSTDDEV\tCONV%\tERRORS\tSATISFACTION")
	for _, vr := range results.VariantResults {
		name := vr.VariantName
		if vr.IsControl {
			name += " (control)"
		}
		if vr.VariantID == results.WinnerVariantID {
			name += " *"
		}
		fmt.Fprintf(w, "  %s\t%d\t%.3f\t%.3f\t%.1f\t%.2f\t%.1f\n",
			name, vr.ParticipantCount, vr.PrimaryMetricValue, vr.StdDev,
			vr.ConversionRate, vr.ErrorRate, vr.SatisfactionScore)
	}
	w.Flush()
	fmt.Println()

	if results.WinnerVariantID != "" {
		fmt.Printf("  Winner\n")
		fmt.Printf("  ------\n")
		if v := test.Variant(results.WinnerVariantID); v != nil {
			fmt.Printf("  %s (confidence %.1f%%, significance %.2f)\n", v.Name, results.Confidence, results.Significance)
		}
		fmt.Println()
	}

	if len(results.Insights) > 0 {
		fmt.Printf("  Insights\n")
		fmt.Printf("  --------\n")
		for _, insight := range results.Insights {
			fmt.Printf("  - %s\n", insight)
		}
		fmt.Println()
	}

	if len(results.Recommendations) > 0 {
		fmt.Printf("  Recommendations\n")
		fmt.Printf("  ---------------\n")
		for _, rec := range results.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
		fmt.Println()
	}
}
