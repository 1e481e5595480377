package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	submitProfileRef string
	submitJobRef     string
	submitTargetURL  string
	submitTier       int
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Enqueues a new application submission task",
	RunE: func(_ *cobra.Command, _ []string) error {
		req := map[string]any{
			"candidate_profile_ref": submitProfileRef,
			"job_posting_ref":       submitJobRef,
			"target_url":            submitTargetURL,
			"priority_tier":         submitTier,
		}

		var resp struct {
			TaskID string `json:"task_id"`
			Status string `json:"status"`
		}
		if err := callAPI("POST", "/api/v1/submissions", req, &resp); err != nil {
			return fmt.Errorf("failed to enqueue submission: %w", err)
		}

		color.Green("Submission enqueued.")
		fmt.Printf("  Task ID: %s\n  Status:  %s\n", resp.TaskID, resp.Status)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	submitCmd.Flags().StringVar(&submitProfileRef, "profile", "", "Candidate profile reference (required)")
	submitCmd.Flags().StringVar(&submitJobRef, "job", "", "Job posting reference (required)")
	submitCmd.Flags().StringVar(&submitTargetURL, "url", "", "Application form URL (required)")
	submitCmd.Flags().IntVar(&submitTier, "tier", 1, "Priority tier: 0=express, 1=standard, 2=batch")
	_ = submitCmd.MarkFlagRequired("profile")
	_ = submitCmd.MarkFlagRequired("job")
	_ = submitCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(submitCmd)
}
