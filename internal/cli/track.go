package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Record experiment events",
	Long:  `Record exposures, conversions, and behavioral metrics for participants. Events for subjects who are not participants are silently dropped.`,
}

var trackExposureCmd = &cobra.Command{
	Use:   "exposure <subject-id> <test-id> <feature>",
	Short: "Record that a subject saw a feature under test",
	Args:  cobra.ExactArgs(3),
	RunE:  runTrackExposure,
}

var trackConversionCmd = &cobra.Command{
	Use:   "conversion <subject-id> <test-id> <event>",
	Short: "Record a conversion event",
	Long: `Record a conversion event for a participant.

Examples:
  experiments track conversion user-42 3f2a... purchase --value 49.99`,
	Args: cobra.ExactArgs(3),
	RunE: runTrackConversion,
}

var trackMetricsCmd = &cobra.Command{
	Use:   "metrics <subject-id> <test-id>",
	Short: "Merge behavioral metrics into a participant's record",
	Long: `Merge a metrics delta into a participant's accumulated metrics.
Counters add up across calls; satisfaction ratings append.

Examples:
  experiments track metrics user-42 3f2a... --sessions 1 --time 1800 --rating 8`,
	Args: cobra.ExactArgs(2),
	RunE: runTrackMetrics,
}

var (
	trackValue       float64
	trackHasValue    bool
	trackSessions    int
	trackTimeSeconds int64
	trackTasks       int
	trackErrors      int
	trackRating      float64
	trackHasRating   bool
	trackFeature     string
	trackFeatureUses int
)

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.AddCommand(trackExposureCmd)
	trackCmd.AddCommand(trackConversionCmd)
	trackCmd.AddCommand(trackMetricsCmd)

	trackConversionCmd.Flags().Float64Var(&trackValue, "value", 0, "Monetary or numeric value of the conversion")

	flags := trackMetricsCmd.Flags()
	flags.IntVar(&trackSessions, "sessions", 0, "Sessions to add")
	flags.Int64Var(&trackTimeSeconds, "time", 0, "Active time in seconds to add")
	flags.IntVar(&trackTasks, "tasks", 0, "Task completions to add")
	flags.IntVar(&trackErrors, "errors", 0, "Errors to add")
	flags.Float64Var(&trackRating, "rating", 0, "Satisfaction rating to append (1-10)")
	flags.StringVar(&trackFeature, "feature", "", "Feature name for usage counting")
	flags.IntVar(&trackFeatureUses, "feature-uses", 1, "Usage count for --feature")
}

func runTrackExposure(cmd *cobra.Command, args []string) error {
	subjectID, testID, feature := args[0], args[1], args[2]
	return withApp(func(ctx context.Context, app *AppContext) error {
		if !app.Engine.TrackExposure(ctx, subjectID, testID, feature, nil) {
			fmt.Printf("Dropped: %s is not a participant of test %s\n", subjectID, testID)
			return nil
		}
		fmt.Printf("Recorded exposure of %s to %s\n", subjectID, feature)
		return nil
	})
}

func runTrackConversion(cmd *cobra.Command, args []string) error {
	subjectID, testID, event := args[0], args[1], args[2]
	trackHasValue = cmd.Flags().Changed("value")

	return withApp(func(ctx context.Context, app *AppContext) error {
		var value *float64
		if trackHasValue {
			value = &trackValue
		}
		if !app.Engine.TrackConversion(ctx, subjectID, testID, event, value, nil) {
			fmt.Printf("Dropped: %s is not a participant of test %s\n", subjectID, testID)
			return nil
		}
		fmt.Printf("Recorded conversion %q for %s\n", event, subjectID)
		return nil
	})
}

func runTrackMetrics(cmd *cobra.Command, args []string) error {
	subjectID, testID := args[0], args[1]
	trackHasRating = cmd.Flags().Changed("rating")

	delta := domain.MetricsDelta{
		SessionCount:     trackSessions,
		TotalTimeSeconds: trackTimeSeconds,
		TaskCompletions:  trackTasks,
		ErrorCount:       trackErrors,
	}
	if trackHasRating {
		delta.SatisfactionRatings = []float64{trackRating}
	}
	if trackFeature != "" {
		delta.FeatureUsage = map[string]int{trackFeature: trackFeatureUses}
	}

	return withApp(func(ctx context.Context, app *AppContext) error {
		if !app.Engine.UpdateParticipantMetrics(ctx, subjectID, testID, delta) {
			fmt.Printf("Dropped: %s is not a participant of test %s\n", subjectID, testID)
			return nil
		}
		fmt.Printf("Updated metrics for %s\n", subjectID)
		return nil
	})
}
