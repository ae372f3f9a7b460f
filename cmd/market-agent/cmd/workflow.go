package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Eugenepoly/market-agent/pkg/types"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run and manage workflows",
}

var (
	runSkipAnalysis bool
	runTopic        string
	runCollectData  bool
	runQuick        bool
	rejectReason    string
)

var workflowRunCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Start a workflow (default: daily)",
	Long: `Start a workflow and wait for it to finish or suspend. A workflow
that contains an approval-gated agent stops in waiting_approval; use
"workflow approve" or "workflow reject" to decide.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "daily"
		if len(args) > 0 {
			name = args[0]
		}
		wf, err := postWorkflow("/workflow/"+name, map[string]any{
			"skip_analysis": runSkipAnalysis,
			"topic":         runTopic,
			"collect_data":  runCollectData,
			"quick":         runQuick,
		})
		if err != nil {
			return err
		}
		return printWorkflow(wf)
	},
}

var workflowStatusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Show the state of a workflow run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := getWorkflow("/workflow/" + args[0] + "/status")
		if err != nil {
			return err
		}
		return printWorkflow(wf)
	},
}

var workflowApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a suspended workflow",
	Long: `Approve a workflow that is waiting for approval. The pending draft is
promoted to the approved store and the workflow completes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := postWorkflow("/workflow/"+args[0]+"/approve", map[string]any{})
		if err != nil {
			return err
		}
		fmt.Printf("Approved %s (status: %s)\n", wf.ID, wf.Status)
		return nil
	},
}

var workflowRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a suspended workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := postWorkflow("/workflow/"+args[0]+"/reject", map[string]any{
			"reason": rejectReason,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Rejected %s: %s\n", wf.ID, wf.Error)
		return nil
	},
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflow runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(serverURL + "/workflows")
		if err != nil {
			return fmt.Errorf("request failed (is the server running?): %w", err)
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return decodeError(resp.StatusCode, data)
		}
		var all []*types.WorkflowContext
		if err := json.Unmarshal(data, &all); err != nil {
			return fmt.Errorf("unexpected response: %w", err)
		}
		if len(all) == 0 {
			fmt.Println("No workflow runs.")
			return nil
		}
		for _, wf := range all {
			fmt.Printf("%s  %-18s %-16s %s\n",
				wf.CreatedAt.Format("2006-01-02 15:04:05"), wf.Status, wf.WorkflowName, wf.ID)
		}
		return nil
	},
}

func init() {
	workflowRunCmd.Flags().BoolVar(&runSkipAnalysis, "skip-analysis", false,
		"skip the deep analysis step")
	workflowRunCmd.Flags().StringVar(&runTopic, "topic", "",
		"deep analysis topic (default: extracted from the report)")
	workflowRunCmd.Flags().BoolVar(&runCollectData, "collect-data", false,
		"run data collection before the report")
	workflowRunCmd.Flags().BoolVar(&runQuick, "quick", false,
		"collect data without model summaries")
	workflowRejectCmd.Flags().StringVar(&rejectReason, "reason", "",
		"rejection reason (default: Rejected by user)")

	workflowCmd.AddCommand(workflowRunCmd, workflowStatusCmd,
		workflowApproveCmd, workflowRejectCmd, workflowListCmd)
	rootCmd.AddCommand(workflowCmd)
}
