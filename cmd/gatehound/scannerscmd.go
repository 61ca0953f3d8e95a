package gatehound

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gatehound/gatehound/internal/backend"
	"github.com/gatehound/gatehound/internal/config"
	"github.com/gatehound/gatehound/internal/scanners"
)

func init() {
	cmd := &cobra.Command{
		Use:   "scanners",
		Short: "List supported scanners and backend availability",
		RunE:  runScannersList,
	}
	rootCmd.AddCommand(cmd)
}

func runScannersList(_ *cobra.Command, _ []string) error {
	probe := backend.NewEngineProbe()
	if engine, ok := probe.Engine(); ok {
		fmt.Printf("Container engine: %s\n", engine)
	} else {
		fmt.Println("Container engine: none (scans fall back to native tools)")
	}

	native := backend.NewNative(config.BinDir())
	adapters, err := scanners.Resolve(nil)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("SCANNER", "SCAN TYPE", "IMAGE", "NATIVE TOOL")
	for _, a := range adapters {
		nativeState := "missing"
		if _, err := native.Resolve(a.Name()); err == nil {
			nativeState = "installed"
		}
		_ = table.Append([]string{a.Name(), a.ScanType(), a.DefaultContainer().Image, nativeState})
	}
	return table.Render()
}
