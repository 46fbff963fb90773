package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
)

var assignCmd = &cobra.Command{
	Use:   "assign <subject-id> <test-id>",
	Short: "Resolve the variant for a subject",
	Long: `Resolve (and persist) the variant assignment for a subject in a test.
The same subject always resolves to the same variant. Audience attributes
are supplied through flags and only matter on first contact.

Examples:
  experiments assign user-42 3f2a... --beta --sessions 12`,
	Args: cobra.ExactArgs(2),
	RunE: runAssign,
}

var (
	assignBeta        bool
	assignCompanySize string
	assignWorkTypes   string
	assignSessions    int
)

func init() {
	rootCmd.AddCommand(assignCmd)

	assignCmd.Flags().BoolVar(&assignBeta, "beta", false, "Subject belongs to the beta cohort")
	assignCmd.Flags().StringVar(&assignCompanySize, "company-size", "", "Subject's company size class")
	assignCmd.Flags().StringVar(&assignWorkTypes, "work-types", "", "Comma-separated work types")
	assignCmd.Flags().IntVar(&assignSessions, "sessions", 0, "Subject's session count")
}

func runAssign(cmd *cobra.Command, args []string) error {
	subjectID, testID := args[0], args[1]
	audience := domain.AudienceContext{
		BetaCohort:   assignBeta,
		CompanySize:  assignCompanySize,
		WorkTypes:    splitList(assignWorkTypes),
		SessionCount: assignSessions,
	}

	return withApp(func(ctx context.Context, app *AppContext) error {
		variantID, assigned, err := app.Engine.AssignVariant(ctx, subjectID, testID, audience)
		if err != nil {
			return err
		}
		if !assigned {
			fmt.Printf("%s is not a participant of test %s\n", subjectID, testID)
			return nil
		}

		test, err := app.Engine.GetTest(ctx, testID)
		if err != nil {
			return err
		}
		variant := test.Variant(variantID)
		if variant == nil {
			return fmt.Errorf("assigned variant %s no longer on test %s", variantID, testID)
		}
		fmt.Printf("%s -> %s (%s)\n", subjectID, variant.Name, variantID)
		return nil
	})
}
