package cli

import "github.com/spf13/pflag"

// reportFlags holds the options shared by the band-column commands.
type reportFlags struct {
	tables             string
	outputFile         string
	errorOnDifferences bool
	ignoreDescription  bool
}

// register adds the shared flags to a command's flag set.
func (f *reportFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.tables, "tables", "t", "", "Names of tables to check, comma-separated (default: all tables)")
	fs.StringVarP(&f.outputFile, "output-file", "o", "", "Output file for the diff report (default: log stream)")
	fs.BoolVarP(&f.errorOnDifferences, "error-on-differences", "e", false, "Return an error if differences are found")
	fs.BoolVarP(&f.ignoreDescription, "ignore-description", "i", false, "Ignore differences in column descriptions")
}
