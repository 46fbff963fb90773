package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
	"github.com/AFA55/pontifex-industries-sub002/internal/engine"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Manage A/B tests",
	Long:  `Create, list, and drive the lifecycle of A/B tests.`,
}

var testCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new test in draft status",
	Long: `Create a new A/B test. Variants are given as repeated --variant flags
and one of them must be marked as control.

Examples:
  experiments test create "checkout-redesign" \
    --variant "Control=50" --variant "New Checkout=50" \
    --control "Control" \
    --config "New Checkout:new_checkout=true" \
    --metric conversion --min-sample 200`,
	Args: cobra.ExactArgs(1),
	RunE: runTestCreate,
}

var testListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tests",
	RunE:  runTestList,
}

var testStartCmd = &cobra.Command{
	Use:   "start <test-id>",
	Short: "Activate a draft test",
	Args:  cobra.ExactArgs(1),
	RunE:  makeTransitionRun("started", (*engine.Engine).StartTest),
}

var testPauseCmd = &cobra.Command{
	Use:   "pause <test-id>",
	Short: "Pause an active test",
	Long:  `Pause an active test. Existing participants keep their variants; no new subjects are admitted.`,
	Args:  cobra.ExactArgs(1),
	RunE:  makeTransitionRun("paused", (*engine.Engine).PauseTest),
}

var testCompleteCmd = &cobra.Command{
	Use:   "complete <test-id>",
	Short: "Complete a test and stamp its end date",
	Args:  cobra.ExactArgs(1),
	RunE:  makeTransitionRun("completed", (*engine.Engine).CompleteTest),
}

// Flags
var (
	testDescription  string
	testVariants     []string
	testControl      string
	testConfigs      []string
	testAllocation   float64
	testMetric       string
	testSecondary    string
	testMinSample    int
	testBetaOnly     bool
	testCompanySizes string
	testWorkTypes    string
	testMinSessions  int
	testListStatus   string
)

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.AddCommand(testCreateCmd)
	testCmd.AddCommand(testListCmd)
	testCmd.AddCommand(testStartCmd)
	testCmd.AddCommand(testPauseCmd)
	testCmd.AddCommand(testCompleteCmd)

	flags := testCreateCmd.Flags()
	flags.StringVarP(&testDescription, "description", "d", "", "Description of the test")
	flags.StringArrayVar(&testVariants, "variant", nil, "Variant as Name=split (repeatable)")
	flags.StringVar(&testControl, "control", "", "Name of the control variant")
	flags.StringArrayVar(&testConfigs, "config", nil, "Variant config as Variant:key=value (repeatable)")
	flags.Float64Var(&testAllocation, "allocation", 100, "Percent of eligible traffic included")
	flags.StringVar(&testMetric, "metric", "conversion", "Primary metric (conversion|engagement|satisfaction|task_completion|error_rate)")
	flags.StringVar(&testSecondary, "secondary", "", "Comma-separated secondary metric names")
	flags.IntVar(&testMinSample, "min-sample", 0, "Minimum participants per variant before a rollout is recommended")
	flags.BoolVar(&testBetaOnly, "beta-only", false, "Restrict to the beta cohort")
	flags.StringVar(&testCompanySizes, "company-sizes", "", "Comma-separated allowed company sizes")
	flags.StringVar(&testWorkTypes, "work-types", "", "Comma-separated work types, any match qualifies")
	flags.IntVar(&testMinSessions, "min-sessions", 0, "Minimum session count for inclusion")

	testListCmd.Flags().StringVar(&testListStatus, "status", "", "Filter by status (draft|active|paused|completed)")
}

func runTestCreate(cmd *cobra.Command, args []string) error {
	def := engine.TestDefinition{
		Name:              args[0],
		Description:       testDescription,
		TrafficAllocation: testAllocation,
		PrimaryMetric:     domain.PrimaryMetric(testMetric),
		SecondaryMetrics:  splitList(testSecondary),
		MinimumSampleSize: testMinSample,
		TargetAudience: domain.TargetAudience{
			BetaCohortOnly:  testBetaOnly,
			CompanySizes:    splitList(testCompanySizes),
			WorkTypes:       splitList(testWorkTypes),
			MinSessionCount: testMinSessions,
		},
	}

	configs := make(map[string]map[string]any)
	for _, spec := range testConfigs {
		variant, key, value, err := parseConfigSpec(spec)
		if err != nil {
			return err
		}
		if configs[variant] == nil {
			configs[variant] = make(map[string]any)
		}
		configs[variant][key] = value
	}

	for _, spec := range testVariants {
		name, split, err := parseVariantSpec(spec)
		if err != nil {
			return err
		}
		def.Variants = append(def.Variants, engine.VariantDefinition{
			Name:         name,
			TrafficSplit: split,
			Config:       configs[name],
			IsControl:    name == testControl,
		})
		delete(configs, name)
	}
	for variant := range configs {
		return fmt.Errorf("config references unknown variant %q", variant)
	}

	return withApp(func(ctx context.Context, app *AppContext) error {
		test, err := app.Engine.CreateTest(ctx, def)
		if err != nil {
			return err
		}

		fmt.Printf("Created test %q in draft status\n", test.Name)
		fmt.Printf("  ID: %s\n", test.ID)
		for _, v := range test.Variants {
			marker := ""
			if v.IsControl {
				marker = " (control)"
			}
			fmt.Printf("  Variant %s%s: %.1f%% — %s\n", v.Name, marker, v.TrafficSplit, v.ID)
		}
		fmt.Printf("Run 'experiments test start %s' to begin\n", test.ID)
		return nil
	})
}

func runTestList(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, app *AppContext) error {
		var tests []*domain.Test
		var err error
		if testListStatus != "" {
			tests, err = app.Engine.ListTestsByStatus(ctx, domain.TestStatus(testListStatus))
		} else {
			tests, err = app.Engine.ListTests(ctx)
		}
		if err != nil {
			return fmt.Errorf("listing tests: %w", err)
		}
		if len(tests) == 0 {
			fmt.Println("No tests found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tVARIANTS\tMETRIC\tALLOCATION\tSTARTED")
		fmt.Fprintln(w, "--\t----\t------\t--------\t------\t----------\t-------")
		for _, t := range tests {
			started := "-"
			if !t.StartDate.IsZero() {
				started = t.StartDate.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.0f%%\t%s\n",
				t.ID, t.Name, t.Status, len(t.Variants), t.PrimaryMetric, t.TrafficAllocation, started)
		}
		return w.Flush()
	})
}

func makeTransitionRun(verb string, transition func(*engine.Engine, context.Context, string) (bool, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, app *AppContext) error {
			testID := args[0]
			ok, err := transition(app.Engine, ctx, testID)
			if err != nil {
				return err
			}
			if !ok {
				test, err := app.Engine.GetTest(ctx, testID)
				if err != nil {
					return err
				}
				fmt.Printf("Test %s is %s; nothing to do\n", testID, test.Status)
				return nil
			}
			fmt.Printf("Test %s %s\n", testID, verb)
			return nil
		})
	}
}
