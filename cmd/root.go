package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/Alijeyrad/nutriplan_backend/cmd/http"
	reminderscmd "github.com/Alijeyrad/nutriplan_backend/cmd/reminders"
	systemcmd "github.com/Alijeyrad/nutriplan_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "nutriplan",
	Short: "NutriPlan appointment backend for nutritionists and their patients.",
	Long: `NutriPlan schedules consultations between nutritionists and patients.
Patients request slots, nutritionists approve or reject them, and confirmed
appointments are mirrored to Google Calendar with email notifications.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(reminderscmd.NewRemindersCommand())
}
