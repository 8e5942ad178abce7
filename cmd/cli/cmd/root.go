package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "runctl",
	Short: "Runctl is a command line tool for the runboard automation dashboard",
	Long: `runctl is the command-line interface for the runboard automation dashboard.

Runboard serves a catalog of automation scripts over HTTP, launches them as
subprocesses, and keeps every launch as a job with a capped in-memory log.

Common workflows:

  List available automations:
    runctl automations

  Launch an automation:
    runctl run backup

  Inspect recent jobs:
    runctl jobs

  Tail a job's log until it finishes:
    runctl logs 12_backup --follow

  Stop a running job:
    runctl kill 12_backup

  Browse archived jobs:
    runctl archive list

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    RUNBOARD_URL      API endpoint (default: http://localhost:8321)
    RUNBOARD_TOKEN    API token for launch and kill requests`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".runctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".runctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "RUNBOARD_VARNAME"
	viper.SetEnvPrefix("RUNBOARD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.runctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8321", "Runboard dashboard URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "API token for launch and kill requests")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}
