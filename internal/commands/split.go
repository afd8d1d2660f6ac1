package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/givin-app/givin/internal/tabular"
	"github.com/givin-app/givin/internal/utils"
)

func newSplitCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "split FILE",
		Short: "Write each dataset of a multi-dataset file to its own CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd.OutOrStdout(), args[0], outDir)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")

	return cmd
}

func runSplit(out io.Writer, path, outDir string) error {
	set, err := readDatasets(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", outDir, err)
	}

	base := utils.SanitizeFilename(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for i, table := range set.Datasets {
		name := filepath.Join(outDir, fmt.Sprintf("%s_%d.csv", base, i+1))
		if err := os.WriteFile(name, []byte(tabular.Serialize(table)), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		fmt.Fprintf(out, "%s: %d rows\n", name, table.RowCount())
	}
	return nil
}
