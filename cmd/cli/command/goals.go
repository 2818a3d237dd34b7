package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"immersionhub/internal/microservices/http-api/dto"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Manage daily goals",
	Long:  `Create, update and delete daily goals, and check today's progress against them`,
}

var goalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show goals and today's progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		resp, err := httpClient.GetDailyGoals(cmd.Context(), tz)
		if err != nil {
			return fmt.Errorf("failed to fetch goals: %w", err)
		}

		fmt.Println(renderDailyGoals(resp))
		return nil
	},
}

var goalsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a daily goal",
	Example: `  immersionctl goals create --type time --target 60
  immersionctl goals create --type chars --target 10000 --inactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		goalType, _ := cmd.Flags().GetString("type")
		target, _ := cmd.Flags().GetFloat64("target")
		inactive, _ := cmd.Flags().GetBool("inactive")

		request := &dto.CreateGoalRequest{Type: goalType, Target: &target}
		if inactive {
			active := false
			request.IsActive = &active
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		goal, err := httpClient.CreateGoal(cmd.Context(), request)
		if err != nil {
			return fmt.Errorf("failed to create goal: %w", err)
		}

		fmt.Println(color.GreenString("✓ Goal created"))
		fmt.Println(renderGoal(goal))
		return nil
	},
}

var goalsUpdateCmd = &cobra.Command{
	Use:   "update [goal_id]",
	Short: "Change a goal's type, target or active flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		request := &dto.UpdateGoalRequest{}
		flags := cmd.Flags()
		if flags.Changed("type") {
			goalType, _ := flags.GetString("type")
			request.Type = &goalType
		}
		if flags.Changed("target") {
			target, _ := flags.GetFloat64("target")
			request.Target = &target
		}
		if flags.Changed("active") && flags.Changed("inactive") {
			return fmt.Errorf("--active and --inactive are mutually exclusive")
		}
		if flags.Changed("active") {
			active := true
			request.IsActive = &active
		}
		if flags.Changed("inactive") {
			active := false
			request.IsActive = &active
		}
		if request.Type == nil && request.Target == nil && request.IsActive == nil {
			return fmt.Errorf("nothing to update, pass --type, --target, --active or --inactive")
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		goal, err := httpClient.UpdateGoal(cmd.Context(), args[0], request)
		if err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}

		fmt.Println(color.GreenString("✓ Goal updated"))
		fmt.Println(renderGoal(goal))
		return nil
	},
}

var goalsDeleteCmd = &cobra.Command{
	Use:   "delete [goal_id]",
	Short: "Delete a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		if err := httpClient.DeleteGoal(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete goal: %w", err)
		}

		fmt.Println(color.GreenString("✓ Goal %s deleted", args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(goalsCmd)
	goalsCmd.AddCommand(goalsListCmd, goalsCreateCmd, goalsUpdateCmd, goalsDeleteCmd)

	goalsCreateCmd.Flags().String("type", "", "goal type: time, episodes, chars or pages")
	goalsCreateCmd.Flags().Float64("target", 0, "daily target (minutes for time)")
	goalsCreateCmd.Flags().Bool("inactive", false, "create the goal switched off")
	_ = goalsCreateCmd.MarkFlagRequired("type")
	_ = goalsCreateCmd.MarkFlagRequired("target")

	goalsUpdateCmd.Flags().String("type", "", "new goal type")
	goalsUpdateCmd.Flags().Float64("target", 0, "new daily target")
	goalsUpdateCmd.Flags().Bool("active", false, "switch the goal on")
	goalsUpdateCmd.Flags().Bool("inactive", false, "switch the goal off")
}
