package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saeed-golshan/corebuild/internal/target"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the release matrix",
	RunE:  runMatrix,
}

func init() {
	rootCmd.AddCommand(matrixCmd)
}

func runMatrix(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUNNER\tVARIANT\tARCH\tTRIPLE\tARTIFACT")
	for _, row := range target.Matrix(cfg.Library.PublishedPrefix) {
		arch := row.ArchFlag
		if arch == "" {
			arch = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.Runner, row.Variant, arch, row.Target.Triple, row.Target.PublishedName)
	}
	return w.Flush()
}
