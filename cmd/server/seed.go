package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chitfund/internal/adapters/docstore"
	"chitfund/internal/application/orchestrators"
)

var seedFile string

var seedSchemesCmd = &cobra.Command{
	Use:   "seed-schemes",
	Short: "Write the schemes of a YAML file into the store",
	Long: `Write every scheme of a YAML seed file into the schemes collection.

The file lists schemes by id:

  schemes:
    - id: S1
      name: Gold 20 x 5000`,
	RunE: runSeedSchemes,
}

func init() {
	seedSchemesCmd.Flags().StringVar(&seedFile, "file", "schemes.yaml", "YAML file with a top-level schemes list")
}

func runSeedSchemes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	ctx := cmd.Context()
	handle, err := docstore.Open(ctx, docstore.Options{Backend: cfg.StoreDriver, DSN: cfg.StoreDSN})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer handle.Close()

	n, err := orchestrators.ExecuteSeedSchemes(ctx, orchestrators.SeedSchemesInput{Data: data},
		orchestrators.SeedSchemesDeps{Client: handle.Client})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d scheme(s)\n", n)
	return nil
}
