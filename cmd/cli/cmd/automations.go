package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var automationsCmd = &cobra.Command{
	Use:   "automations",
	Short: "List automations available on the dashboard",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(viper.GetString("url"), viper.GetString("token"))

		autos, err := client.ListAutomations()
		if err != nil {
			cmd.Printf("Error fetching automations: %s\n", err)
			os.Exit(1)
		}

		if len(autos) == 0 {
			cmd.Println("No automations configured.")
			return
		}

		ids := make([]string, 0, len(autos))
		for id := range autos {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tDESCRIPTION")
		for _, id := range ids {
			a := autos[id]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, a.Name, a.Category, a.Description)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(automationsCmd)
}
