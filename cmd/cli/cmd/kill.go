package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var killCmd = &cobra.Command{
	Use:   "kill [job_id]",
	Short: "Stop a running job",
	Long: `Send a kill signal to a running job's process. Delivery is best-effort: a
success reply means the signal was sent, and the job's status flips to killed
once the dashboard observes the exit.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		jobID := args[0]

		client := NewClient(viper.GetString("url"), viper.GetString("token"))

		resp, err := client.Kill(jobID)
		if err != nil {
			cmd.Printf("Error killing job: %v\n", err)
			return
		}

		if resp.Success {
			cmd.Printf("✅ Kill signal sent to job %s.\n", jobID)
		} else {
			cmd.Printf("Job %s is not running, nothing to kill.\n", jobID)
		}
	},
}

func init() {
	rootCmd.AddCommand(killCmd)
}
