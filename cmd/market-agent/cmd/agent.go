package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Eugenepoly/market-agent/internal/agent"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run a single agent outside a workflow",
}

var (
	agentTopic        string
	agentQuick        bool
	agentReportFile   string
	agentAnalysisFile string
)

// agentAliases maps CLI subcommand names to registered agent names.
var agentAliases = map[string]string{
	"report":   agent.NameReport,
	"analysis": agent.NameDeepAnalysis,
	"social":   agent.NameSocial,
	"monitor":  agent.NameMonitor,
	"fundflow": agent.NameFundFlow,
	"onchain":  agent.NameOnchain,
	"collect":  agent.NameDataCollection,
}

func runAgent(name string) error {
	seed := map[string]string{}
	if agentReportFile != "" {
		content, err := os.ReadFile(agentReportFile)
		if err != nil {
			return fmt.Errorf("reading report file: %w", err)
		}
		seed[agent.NameReport] = string(content)
	}
	if agentAnalysisFile != "" {
		content, err := os.ReadFile(agentAnalysisFile)
		if err != nil {
			return fmt.Errorf("reading analysis file: %w", err)
		}
		seed[agent.NameDeepAnalysis] = string(content)
	}

	wf, err := postWorkflow("/agent/"+name, map[string]any{
		"topic": agentTopic,
		"quick": agentQuick,
		"seed":  seed,
	})
	if err != nil {
		return err
	}
	return printWorkflow(wf)
}

func init() {
	shortHelp := map[string]string{
		"report":   "Write the daily market report",
		"analysis": "Deep-dive a topic from an existing report",
		"social":   "Draft a social post (waits for approval)",
		"monitor":  "Collect and evaluate watched social accounts",
		"fundflow": "Collect quotes, sentiment, funding and open interest",
		"onchain":  "Collect on-chain activity",
		"collect":  "Run all data collection sources",
	}
	for alias, name := range agentAliases {
		agentName := name
		sub := &cobra.Command{
			Use:   alias,
			Short: shortHelp[alias],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAgent(agentName)
			},
		}
		agentCmd.AddCommand(sub)
	}

	agentCmd.PersistentFlags().StringVar(&agentTopic, "topic", "",
		"analysis topic (analysis agent only)")
	agentCmd.PersistentFlags().BoolVar(&agentQuick, "quick", false,
		"collect data without model summaries")
	agentCmd.PersistentFlags().StringVar(&agentReportFile, "report-file", "",
		"file whose contents seed the report slot")
	agentCmd.PersistentFlags().StringVar(&agentAnalysisFile, "analysis-file", "",
		"file whose contents seed the analysis slot")

	rootCmd.AddCommand(agentCmd)
}
