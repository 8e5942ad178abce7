package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run [automation_id] [script args...]",
	Short: "Launch an automation as a new job",
	Long: `Launch an automation script from the dashboard catalog. Arguments after
the automation id are passed to the script unchanged.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		automationID := args[0]
		scriptArgs := args[1:]

		client := NewClient(viper.GetString("url"), viper.GetString("token"))

		resp, err := client.Execute(automationID, scriptArgs)
		if err != nil {
			cmd.Printf("Error launching automation: %v\n", err)
			return
		}

		cmd.Printf("🚀 %s started!\nJob ID: %s\n", resp.Name, resp.JobID)
		cmd.Printf("Tail the log with: runctl logs %s --follow\n", resp.JobID)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
