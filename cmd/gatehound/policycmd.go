package gatehound

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gatehound/gatehound/internal/config"
	"github.com/gatehound/gatehound/internal/policy"
)

func init() {
	policyCmd := &cobra.Command{Use: "policy", Short: "Inspect the severity gate"}
	rootCmd.AddCommand(policyCmd)

	var showPath string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective policy after config overlays",
		RunE: func(_ *cobra.Command, _ []string) error {
			abs, _ := filepath.Abs(showPath)
			pol := policy.DefaultConfig()
			if c, err := config.LoadGlobal(); err == nil {
				pol = c.Policy.Apply(pol)
			}
			if c, err := config.LoadLocal(abs); err == nil {
				pol = c.Policy.Apply(pol)
			}
			if flagJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(pol)
			}
			b, err := yaml.Marshal(pol)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(b)
			return err
		},
	}
	showCmd.Flags().StringVarP(&showPath, "path", "p", ".", "repository whose local config to overlay")
	policyCmd.AddCommand(showCmd)

	var initOutput string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .gatehound.yml seeded with the default policy",
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(initOutput); err == nil {
				return fmt.Errorf("%s already exists", initOutput)
			}
			pol := policy.DefaultConfig()
			doc := struct {
				Policy policy.Config `yaml:"policy"`
			}{Policy: pol}
			b, err := yaml.Marshal(doc)
			if err != nil {
				return err
			}
			if err := os.WriteFile(initOutput, b, 0o644); err != nil {
				return err
			}
			fmt.Println("Wrote", initOutput)
			return nil
		},
	}
	initCmd.Flags().StringVar(&initOutput, "output", ".gatehound.yml", "output file path")
	policyCmd.AddCommand(initCmd)
}
