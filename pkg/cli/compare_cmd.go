package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lsst/sdm-tools/internal/bandcheck"
	"github.com/lsst/sdm-tools/internal/felis"
)

func newCompareCmd(state *rootState) *cobra.Command {
	var (
		flags reportFlags
		bands string
	)

	cmd := &cobra.Command{
		Use:   "compare-band-columns REFERENCE COMPARISON",
		Short: "Compare band column definitions between schemas",
		Long: `Compare band column definitions between two schemas.

Differences will be printed as the set of transformations required to turn
the first schema (reference) into the second one (comparison). For instance,
if a column was added to the comparison schema, this would be reported under
'column_added' in the output. When values change, the old or reference value
is reported under 'reference' and the new value under 'comparison'.

Example:

  sdm-tools compare-band-columns reference_schema.yaml comparison_schema.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			log := state.logger

			bandSet := parseCommaSeparated(bands)
			if err := bandcheck.ValidateBands(bandSet); err != nil {
				return err
			}

			schemas, err := felis.LoadAll(args)
			if err != nil {
				return fmt.Errorf("load schemas: %w", err)
			}

			comparator, err := bandcheck.NewComparator(schemas, bandcheck.Options{
				Tables:            parseCommaSeparated(flags.tables),
				Bands:             bandSet,
				IgnoreDescription: flags.ignoreDescription,
				Logger:            log,
			})
			if err != nil {
				return err
			}

			report, err := comparator.Run()
			if err != nil {
				return err
			}

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
	cmd.Flags().StringVarP(&bands, "bands", "b", strings.Join(bandcheck.DefaultBands(), ","),
		"List of bands to compare, comma-separated")

	return cmd
}
