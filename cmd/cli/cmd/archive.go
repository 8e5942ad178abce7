package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse archived jobs",
	Long:  `Inspect terminal jobs that were evicted from the dashboard's bounded in-memory table and persisted to the archive.`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived jobs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(viper.GetString("url"), viper.GetString("token"))

		limit, _ := cmd.Flags().GetInt("limit")

		jobs, err := client.ListArchive(limit)
		if err != nil {
			cmd.Printf("Error fetching archive: %s\n", err)
			os.Exit(1)
		}

		if len(jobs) == 0 {
			cmd.Println("No archived jobs found.")
			return
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "JOB ID\tNAME\tSTATUS\tSTARTED AT\tENDED AT\tLINES")
		for _, j := range jobs {
			endedAt := ""
			if j.EndedAt != nil {
				endedAt = j.EndedAt.Format(time.RFC3339)
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
				j.JobID,
				j.Name,
				j.Status,
				j.StartedAt.Format(time.RFC3339),
				endedAt,
				j.LineCount,
			)
		}
		w.Flush()
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show [job_id]",
	Short: "Show one archived job including its stored log",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(viper.GetString("url"), viper.GetString("token"))

		job, err := client.GetArchivedJob(args[0])
		if err != nil {
			cmd.Printf("Error fetching archived job: %s\n", err)
			os.Exit(1)
		}

		cmd.Printf("%s %s(%s)%s\n", job.Name, colorDim, job.JobID, colorReset)
		cmd.Printf("Status:  %s\n", colorizeStatus(job.Status))
		cmd.Printf("Started: %s\n", job.StartedAt.Format(time.RFC3339))
		if job.EndedAt != nil {
			cmd.Printf("Ended:   %s\n", job.EndedAt.Format(time.RFC3339))
		}
		cmd.Printf("Lines:   %d\n\n", job.LineCount)

		for _, line := range job.Log {
			cmd.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)

	archiveListCmd.Flags().IntP("limit", "l", 20, "Number of archived jobs to list")
}
