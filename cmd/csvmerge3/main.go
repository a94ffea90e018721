// Command csvmerge3 performs a three-way merge of three CSV files that
// share a common ancestor, writing the merged CSV (with inline conflict
// blocks for anything it can't resolve) to stdout.
package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/carlodf/csvmerge3"
	"github.com/carlodf/csvmerge3/config"
	"github.com/carlodf/csvmerge3/merrors"
	"github.com/carlodf/csvmerge3/source"
)

var cli struct {
	Key            string `help:"Column that identifies a row across all three files." required:""`
	Quoting        string `help:"Output quoting policy: minimal, all, nonnumeric, none." default:"minimal"`
	LineTerminator string `name:"line-terminator" help:"Output line terminator: native, unix, dos." default:"native"`
	ReformatAll    bool   `name:"reformat-all" help:"Re-encode every row instead of passing unchanged rows through verbatim."`
	Verbose        bool   `short:"v" help:"Log debug-level diagnostics."`

	LCA  string `arg:"" help:"Common ancestor CSV file."`
	A    string `arg:"" help:"First descendant CSV file."`
	B    string `arg:"" help:"Second descendant CSV file."`
}

func main() {
	kctx := kong.Parse(&cli, kong.Description("Three-way merge of CSV files sharing a common ancestor."))
	kctx.FatalIfErrorf(run())
}

func run() error {
	log := logrus.New()
	if cli.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	quote, err := config.ParseQuotePolicy(cli.Quoting)
	if err != nil {
		return err
	}
	term, err := config.ParseLineTerminator(cli.LineTerminator)
	if err != nil {
		return err
	}

	lca, err := source.Open(cli.LCA)
	if err != nil {
		return merrors.Wrap(merrors.KindIOError, "opening LCA file", err)
	}
	defer lca.Close()
	a, err := source.Open(cli.A)
	if err != nil {
		return merrors.Wrap(merrors.KindIOError, "opening A file", err)
	}
	defer a.Close()
	b, err := source.Open(cli.B)
	if err != nil {
		return merrors.Wrap(merrors.KindIOError, "opening B file", err)
	}
	defer b.Close()

	cfg := config.Config{
		KeyColumn:      cli.Key,
		Quote:          quote,
		LineTerminator: term,
		ReformatAll:    cli.ReformatAll,
		Logger:         log,
	}

	result, err := csvmerge3.Merge3(context.Background(), cfg, lca, a, b, os.Stdout)
	if err != nil {
		os.Exit(merrors.ExitCode(err))
	}
	if result.Warnings != nil {
		log.Warnf("merge diagnostics: %v", result.Warnings)
	}
	if result.ConflictCount > 0 {
		log.Warnf("%d conflict(s) written to output", result.ConflictCount)
		os.Exit(merrors.ExitConflicts)
	}
	return nil
}
