package gatehound

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatehound/gatehound/internal/update"
)

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the gatehound version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("gatehound", version)
			if flagNoUpdateCheck {
				return
			}
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				fmt.Printf("new version available: v%s (run 'gatehound update')\n", latest)
			}
		},
	}
	rootCmd.AddCommand(versionCmd)

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update gatehound to the latest release",
		RunE: func(_ *cobra.Command, _ []string) error {
			latest, err := update.Apply(version)
			if err != nil {
				return err
			}
			if latest == version {
				fmt.Println("already up to date")
				return nil
			}
			fmt.Println("updated to", latest)
			return nil
		},
	}
	rootCmd.AddCommand(updateCmd)
}
