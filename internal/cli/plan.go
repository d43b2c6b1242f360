package cli

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"example.com/onestop-outings/backend/internal/models"
)

func newPlanCommand(opts *options) *cobra.Command {
	var (
		budget    int
		interests []string
		mode      string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate an outing plan and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prefs := models.UserPreferences{
				Budget:    budget,
				Interests: interests,
				Mode:      models.Mode(mode),
			}
			if prefs.Interests == nil {
				prefs.Interests = []string{}
			}
			if err := validator.New().Struct(prefs); err != nil {
				return fmt.Errorf("invalid preferences: %w", err)
			}

			application, err := opts.loadApp(cmd)
			if err != nil {
				return err
			}

			plan, err := application.Planner.CreatePlan(cmd.Context(), prefs)
			if err != nil {
				return fmt.Errorf("create plan: %w", err)
			}

			return printJSON(cmd.OutOrStdout(), plan)
		},
	}

	cmd.Flags().IntVarP(&budget, "budget", "b", 50, "Budget in euros")
	cmd.Flags().StringSliceVarP(&interests, "interest", "i", nil, "Interest, repeatable or comma separated")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(models.ModeSurprise), "Plan mode: surprise or must-see")

	return cmd
}
