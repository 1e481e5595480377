package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var dlqJSON bool

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Manages the dead-letter queue",
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists dead-lettered submission tasks",
	RunE: func(_ *cobra.Command, _ []string) error {
		var resp struct {
			DeadLetters []struct {
				Task struct {
					TaskID        string `json:"task_id"`
					TargetURL     string `json:"target_url"`
					AttemptCount  int    `json:"attempt_count"`
					PriorityTier  string `json:"priority_tier"`
					CandidateRef  string `json:"candidate_profile_ref"`
					JobPostingRef string `json:"job_posting_ref"`
				} `json:"task"`
				Reason       string    `json:"reason"`
				DeadLetterAt time.Time `json:"dead_letter_at"`
			} `json:"dead_letters"`
		}
		if err := callAPI("GET", "/api/v1/deadletters", nil, &resp); err != nil {
			return fmt.Errorf("failed to list dead letters: %w", err)
		}

		if dlqJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(resp.DeadLetters)
		}

		if len(resp.DeadLetters) == 0 {
			color.Green("Dead-letter queue is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TASK ID\tTARGET\tTIER\tATTEMPTS\tREASON\tDEAD-LETTERED AT")
		for _, entry := range resp.DeadLetters {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				entry.Task.TaskID,
				entry.Task.TargetURL,
				entry.Task.PriorityTier,
				entry.Task.AttemptCount,
				entry.Reason,
				entry.DeadLetterAt.Format(time.RFC822),
			)
		}
		return w.Flush()
	},
}

var dlqRequeueCmd = &cobra.Command{
	Use:   "requeue <task-id>",
	Short: "Requeues a dead-lettered task with a fresh retry budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := fmt.Sprintf("/api/v1/deadletters/%s/requeue", args[0])
		if err := callAPI("POST", path, nil, nil); err != nil {
			return fmt.Errorf("failed to requeue task: %w", err)
		}
		color.Green("Task %s requeued.", args[0])
		return nil
	},
}

var dlqPurgeCmd = &cobra.Command{
	Use:   "purge <task-id>",
	Short: "Permanently removes a dead-lettered task",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := fmt.Sprintf("/api/v1/deadletters/%s", args[0])
		if err := callAPI("DELETE", path, nil, nil); err != nil {
			return fmt.Errorf("failed to purge task: %w", err)
		}
		color.Yellow("Task %s purged.", args[0])
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	dlqListCmd.Flags().BoolVar(&dlqJSON, "json", false, "Output dead letters as JSON")
	dlqCmd.AddCommand(dlqListCmd, dlqRequeueCmd, dlqPurgeCmd)
	rootCmd.AddCommand(dlqCmd)
}
