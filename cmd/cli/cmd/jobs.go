package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"runboard/pkg/api"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List jobs tracked by the dashboard",
	Long:  `List every job the dashboard still holds in memory, newest first. Jobs evicted to the archive are listed by "runctl archive list" instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(viper.GetString("url"), viper.GetString("token"))

		jobs, err := client.ListJobs()
		if err != nil {
			cmd.Printf("Error fetching jobs: %s\n", err)
			os.Exit(1)
		}

		if len(jobs) == 0 {
			cmd.Println("No jobs found.")
			return
		}

		type row struct {
			id  string
			job api.JobSummary
		}
		rows := make([]row, 0, len(jobs))
		for id, job := range jobs {
			rows = append(rows, row{id: id, job: job})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].job.StartedAt.Equal(rows[j].job.StartedAt) {
				return rows[i].id > rows[j].id
			}
			return rows[i].job.StartedAt.After(rows[j].job.StartedAt)
		})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "JOB ID\tNAME\tSTATUS\tPID\tSTARTED\tDURATION")
		for _, r := range rows {
			pid := "-"
			if r.job.PID != nil {
				pid = fmt.Sprintf("%d", *r.job.PID)
			}

			duration := formatDuration(time.Since(r.job.StartedAt))
			if r.job.EndedAt != nil {
				duration = formatDuration(r.job.EndedAt.Sub(r.job.StartedAt))
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s ago\t%s\n",
				r.id,
				r.job.Name,
				colorizeStatus(r.job.Status),
				pid,
				relativeTime(r.job.StartedAt),
				duration,
			)
		}
		w.Flush()
	},
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "completed":
		return colorGreen + "✓" + colorReset
	case "error":
		return colorRed + "✗" + colorReset
	case "running":
		return colorYellow + "⏳" + colorReset
	case "killed":
		return colorCyan + "◼" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "completed":
		return icon + " " + colorGreen + status + colorReset
	case "error":
		return icon + " " + colorRed + status + colorReset
	case "running":
		return icon + " " + colorYellow + status + colorReset
	case "killed":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}
