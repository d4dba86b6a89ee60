package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lsst/sdm-tools/internal/bandcheck"
	"github.com/lsst/sdm-tools/internal/felis"
)

func newCheckCmd(state *rootState) *cobra.Command {
	var (
		flags         reportFlags
		referenceBand string
	)

	cmd := &cobra.Command{
		Use:   "check-band-columns FILES...",
		Short: "Check self-consistency of band column definitions within schema tables",
		Long: `Check that the band columns in a schema, which start with the band name
followed by an underscore, are consistent across all bands. This includes
checking that the column names, types, and descriptions are the same.
Differences that are found will be printed to the console or written to an
output file.

Example:

  sdm-tools check-band-columns schema1.yaml schema2.yaml -t table1 -o diff_report.json -e`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			log := state.logger

			schemas, err := felis.LoadAll(args)
			if err != nil {
				return fmt.Errorf("load schemas: %w", err)
			}

			log.Info("checking band columns", "reference_band", referenceBand)
			checker, err := bandcheck.NewChecker(schemas, bandcheck.Options{
				Tables:            parseCommaSeparated(flags.tables),
				ReferenceBand:     referenceBand,
				IgnoreDescription: flags.ignoreDescription,
				Logger:            log,
			})
			if err != nil {
				return err
			}

			report, err := checker.Run()
			if err != nil {
				return err
			}

			// The report is always emitted before any policy failure.
			switch {
			case flags.outputFile != "":
				if err := bandcheck.WriteJSONFile(flags.outputFile, report); err != nil {
					return err
				}
				log.Info("band column differences written", "path", flags.outputFile)
			case report.Empty():
				log.Info("no band column differences found")
			default:
				if err := bandcheck.WriteJSON(os.Stdout, report); err != nil {
					return err
				}
			}

			if flags.errorOnDifferences && !report.Empty() {
				return bandcheck.ErrDifferencesFound
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&referenceBand, "reference-band", "r", bandcheck.DefaultReferenceBand,
		"Reference band for comparison (will be compared against all others)")

	return cmd
}
