package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lsst/sdm-tools/internal/datalink"
	"github.com/lsst/sdm-tools/internal/felis"
)

func newDatalinkCmd(state *rootState) *cobra.Command {
	var (
		resourceDir string
		zipDir      string
	)

	cmd := &cobra.Command{
		Use:   "build-datalink-metadata FILES...",
		Short: "Build DataLink metadata from Felis YAML files",
		Long: `Build a collection of configuration files for datalinker that specify the
principal and minimal columns for tables. This temporarily only does
tap:principal and we hand-maintain a columns-minimal.yaml file until we can
include a new key in the Felis input files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			log := state.logger

			schemas, err := felis.LoadAll(args)
			if err != nil {
				return fmt.Errorf("load schemas: %w", err)
			}

			columnsPath := filepath.Join(resourceDir, "columns-principal.yaml")
			if err := datalink.WriteMetadataFile(columnsPath, schemas); err != nil {
				return err
			}
			log.Info("wrote principal column metadata", "path", columnsPath)

			if err := datalink.PackageZips(resourceDir, zipDir); err != nil {
				return err
			}
			log.Info("wrote datalink archives", "dir", zipDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&resourceDir, "resource-dir", ".", "Directory to search for and write resources")
	cmd.Flags().StringVar(&zipDir, "zip-dir", ".", "Directory to write zip files")

	return cmd
}
