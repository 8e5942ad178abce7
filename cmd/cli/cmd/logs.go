package cmd

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"runboard/pkg/api"
)

var follow bool

var logsCmd = &cobra.Command{
	Use:   "logs [job_id]",
	Short: "Print a job's captured output",
	Long: `Print the captured output of a job. With --follow the command streams new
lines over a websocket until the job reaches a terminal status.

The dashboard keeps at most the last 500 lines per job, so long logs start
mid-stream.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		jobID := args[0]

		url := viper.GetString("url")
		token := viper.GetString("token")

		if !follow {
			client := NewClient(url, token)

			resp, err := client.GetLog(jobID)
			if err != nil {
				cmd.Printf("Error fetching log: %v\n", err)
				return
			}
			for _, line := range resp.Log {
				cmd.Println(line)
			}
			return
		}

		followLog(cmd, url, jobID)
	},
}

// followLog streams log frames until the job finishes or the user interrupts.
func followLog(cmd *cobra.Command, baseURL, jobID string) {
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/stream/" + jobID

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			cmd.Printf("Error fetching log: job %s not found\n", jobID)
			return
		}
		cmd.Printf("Error connecting to stream: %v\n", err)
		return
	}
	defer conn.Close()

	// Trap Ctrl+C to exit gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		conn.Close()
		os.Exit(0)
	}()

	for {
		var frame api.StreamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				cmd.Printf("Stream closed: %v\n", err)
			}
			return
		}

		for _, line := range frame.Lines {
			cmd.Println(line)
		}

		if frame.Done {
			cmd.Printf("--- job %s finished: %s ---\n", jobID, frame.Status)
			return
		}
	}
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output until the job finishes")
}
