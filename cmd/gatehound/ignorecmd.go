package gatehound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gatehound/gatehound/internal/config"
	"github.com/gatehound/gatehound/internal/ignore"
)

var ignorePathFlag string

func init() {
	ignoreCmd := &cobra.Command{Use: "ignore", Short: "Manage the triage ignore list"}
	rootCmd.AddCommand(ignoreCmd)
	ignoreCmd.PersistentFlags().StringVarP(&ignorePathFlag, "path", "p", ".", "repository whose ignore file to use")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Parse the ignore file and list its patterns",
		RunE:  runIgnoreCheck,
	}
	ignoreCmd.AddCommand(checkCmd)

	var addComment string
	addCmd := &cobra.Command{
		Use:   "add <scanner[:rule[:path-glob]]>",
		Short: "Append a pattern to the repository ignore file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runIgnoreAdd(args[0], addComment)
		},
	}
	addCmd.Flags().StringVar(&addComment, "comment", "", "reason recorded next to the pattern")
	ignoreCmd.AddCommand(addCmd)

	matchCmd := &cobra.Command{
		Use:   "match <scanner> <rule> <file-path>",
		Short: "Test which pattern, if any, would suppress a finding",
		Args:  cobra.ExactArgs(3),
		RunE:  runIgnoreMatch,
	}
	ignoreCmd.AddCommand(matchCmd)
}

func resolveIgnorePath() string {
	abs, _ := filepath.Abs(ignorePathFlag)
	return config.IgnorePath(abs)
}

func runIgnoreCheck(_ *cobra.Command, _ []string) error {
	path := resolveIgnorePath()
	f, err := ignore.Load(path)
	if err != nil {
		return err
	}
	if len(f.Entries) == 0 {
		fmt.Printf("%s: no patterns\n", path)
		return nil
	}
	fmt.Printf("%s: %d pattern(s)\n", path, len(f.Entries))
	for _, e := range f.Entries {
		line := fmt.Sprintf("  %-40s", e.Pattern())
		if e.Comment != "" {
			line += "  # " + e.Comment
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
	return nil
}

func runIgnoreAdd(pattern, comment string) error {
	if strings.TrimSpace(pattern) == "" || strings.HasPrefix(pattern, "#") {
		return fmt.Errorf("invalid pattern %q", pattern)
	}
	abs, _ := filepath.Abs(ignorePathFlag)
	path := filepath.Join(abs, ".gatehoundignore")

	line := pattern
	if comment != "" {
		line += " # " + comment
	}
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = fh.Close() }()
	if _, err := fh.WriteString(line + "\n"); err != nil {
		return err
	}
	fmt.Println("Added to", path)
	return nil
}

func runIgnoreMatch(_ *cobra.Command, args []string) error {
	f, err := ignore.Load(resolveIgnorePath())
	if err != nil {
		return err
	}
	entry, ok := f.Match(args[0], args[1], args[2])
	if !ok {
		fmt.Println("No pattern matches; the finding would be reported.")
		return nil
	}
	fmt.Printf("Suppressed by %q", entry.Pattern())
	if entry.Comment != "" {
		fmt.Printf("  # %s", entry.Comment)
	}
	fmt.Println()
	return nil
}
