package gatehound

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gatehound/gatehound/internal/audit"
	"github.com/gatehound/gatehound/internal/config"
	"github.com/gatehound/gatehound/internal/manifest"
)

func init() {
	runs := &cobra.Command{Use: "runs", Short: "Inspect past runs"}
	rootCmd.AddCommand(runs)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded run manifests",
		RunE:  runRunsList,
	}
	runs.AddCommand(listCmd)

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print one run manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsShow,
	}
	runs.AddCommand(showCmd)

	var historyPath string
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show the repository audit log, newest first",
		RunE: func(_ *cobra.Command, _ []string) error {
			abs, _ := filepath.Abs(historyPath)
			records, err := audit.New(abs).History()
			if err != nil {
				return err
			}
			if flagJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			if len(records) == 0 {
				fmt.Println("No audit records.")
				return nil
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.Header("WHEN", "RUN", "STATUS", "EXIT", "FINDINGS", "SUPPRESSED")
			for _, r := range records {
				_ = table.Append([]string{
					r.Timestamp.Format("2006-01-02 15:04"),
					r.RunID,
					r.Status,
					fmt.Sprintf("%d", r.ExitCode),
					fmt.Sprintf("%d", r.TotalFindings),
					fmt.Sprintf("%d", r.SuppressedCount),
				})
			}
			return table.Render()
		},
	}
	historyCmd.Flags().StringVarP(&historyPath, "path", "p", ".", "repository whose audit log to read")
	runs.AddCommand(historyCmd)
}

func runRunsList(_ *cobra.Command, _ []string) error {
	runsDir := config.RunsDir()
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No runs recorded.")
			return nil
		}
		return err
	}

	var manifests []manifest.RunManifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := manifest.Load(filepath.Join(runsDir, e.Name(), "manifest.json"))
		if err != nil {
			continue // unfinished or foreign directory
		}
		manifests = append(manifests, m)
	}
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].StartedAt > manifests[j].StartedAt
	})

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(manifests)
	}
	if len(manifests) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("RUN", "STARTED", "STATUS", "STEPS", "REPO")
	for _, m := range manifests {
		_ = table.Append([]string{
			m.RunID,
			m.StartedAt,
			m.Status,
			fmt.Sprintf("%d", len(m.Steps)),
			m.RepoPath,
		})
	}
	return table.Render()
}

func runRunsShow(_ *cobra.Command, args []string) error {
	m, err := manifest.Load(filepath.Join(config.RunsDir(), args[0], "manifest.json"))
	if err != nil {
		return fmt.Errorf("run %q: %w", args[0], err)
	}
	b, err := m.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(b, '\n'))
	return err
}
