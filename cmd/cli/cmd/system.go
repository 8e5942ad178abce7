package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Show dashboard host statistics",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(viper.GetString("url"), viper.GetString("token"))

		stats, err := client.SystemStats()
		if err != nil {
			cmd.Printf("Error fetching system stats: %s\n", err)
			os.Exit(1)
		}

		cmd.Printf("%sSystem%s\n", colorBold, colorReset)
		cmd.Println("──────────────────────────────")
		cmd.Printf("%sHostname:%s    %s\n", colorDim, colorReset, stats.Hostname)
		cmd.Printf("%sCPU:%s         %.1f%%\n", colorDim, colorReset, stats.CPUPercent)
		cmd.Printf("%sMemory:%s      %.1f%% of %s\n", colorDim, colorReset, stats.MemoryUsedPercent, formatBytes(stats.MemoryTotal))
		cmd.Printf("%sUptime:%s      %s\n", colorDim, colorReset, formatUptime(stats.UptimeSeconds))
		cmd.Printf("%sGoroutines:%s  %d\n", colorDim, colorReset, stats.Goroutines)
		cmd.Printf("%sJobs:%s        %d running, %d tracked\n", colorDim, colorReset, stats.RunningJobs, stats.TotalJobs)
	},
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatUptime(seconds uint64) string {
	d := time.Duration(seconds) * time.Second
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func init() {
	rootCmd.AddCommand(systemCmd)
}
