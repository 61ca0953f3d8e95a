package gatehound

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	ci := &cobra.Command{Use: "ci", Short: "CI template helpers for multiple providers"}
	rootCmd.AddCommand(ci)

	var provider string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a CI pipeline template for your provider",
		RunE: func(_ *cobra.Command, _ []string) error {
			var path string
			var content string
			switch provider {
			case "gitlab":
				path = ".gitlab-ci.yml"
				content = `stages: [security]
gatehound:
  stage: security
  image: golang:1.25
  services:
    - docker:dind
  script:
    - go install github.com/gatehound/gatehound@latest
    - gatehound scan --json | tee gatehound-report.json
  artifacts:
    when: always
    paths:
      - gatehound-report.json
`
			case "bitbucket":
				path = "bitbucket-pipelines.yml"
				content = `pipelines:
  default:
    - step:
        name: Gatehound Scan
        image: golang:1.25
        caches:
          - go
        script:
          - go install github.com/gatehound/gatehound@latest
          - gatehound scan --backend native --json | tee gatehound-report.json
        artifacts:
          - gatehound-report.json
`
			case "azure":
				path = "azure-pipelines.yml"
				content = `trigger:
- main

pool:
  vmImage: 'ubuntu-latest'

steps:
- task: GoTool@0
  inputs:
    version: '1.25.x'
- script: |
    go install github.com/gatehound/gatehound@latest
    gatehound scan --json | tee gatehound-report.json
  displayName: 'Gatehound Scan'
- publish: gatehound-report.json
  artifact: gatehound-report
  condition: succeededOrFailed()
`
			default:
				return fmt.Errorf("unknown --provider. Supported: gitlab, bitbucket, azure")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return err
			}
			fmt.Println("Wrote", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&provider, "provider", "", "CI provider: gitlab | bitbucket | azure")
	if err := initCmd.MarkFlagRequired("provider"); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not mark --provider as required:", err)
	}
	ci.AddCommand(initCmd)
}
