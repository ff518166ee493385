package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"jscodemod/pkg/driver"
	"jscodemod/pkg/errors"
	"jscodemod/pkg/rules"
	"jscodemod/pkg/source"
	"jscodemod/pkg/transform"
)

func main() {
	rulesFlag := flag.String("rules", "", "Comma-separated rule keys to run (default: all rules)")
	listFlag := flag.Bool("list", false, "List the available rules and exit")
	outDirFlag := flag.String("o", "", "Write outputs under this directory")
	inPlaceFlag := flag.Bool("w", false, "Rewrite changed files in place")
	verifyFlag := flag.Bool("verify", false, "Re-parse every emitted program before writing it")
	strictFlag := flag.Bool("strict", false, "Skip rewrites that carry warnings")
	workersFlag := flag.Int("j", 0, "Files transformed concurrently (default: GOMAXPROCS)")
	watchFlag := flag.Bool("watch", false, "Watch a directory and transform files as they change")
	verboseFlag := flag.Bool("v", false, "Log progress to stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jscodemod [options] [file or directory ...]\n\n")
		fmt.Fprintf(os.Stderr, "With no arguments the program is read from stdin and written to stdout.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *listFlag {
		for _, rule := range rules.Default().All() {
			fmt.Printf("%-20s %s\n", rule.Key(), rule.DisplayName())
		}
		return
	}

	logger := zap.NewNop()
	if *verboseFlag {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start logger: %s\n", err)
			os.Exit(70)
		}
		defer logger.Sync()
	}

	d, err := driver.New(driver.Options{
		Rules:         splitRules(*rulesFlag),
		Verify:        *verifyFlag,
		RejectFlagged: *strictFlag,
		Workers:       *workersFlag,
		OutDir:        *outDirFlag,
		InPlace:       *inPlaceFlag,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "jscodemod: %s\n", err)
		os.Exit(64) // Exit code 64: command line usage error
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *watchFlag:
		if flag.NArg() != 1 || (*outDirFlag == "" && !*inPlaceFlag) {
			fmt.Fprintf(os.Stderr, "Usage: jscodemod -watch (-o dir | -w) <directory>\n")
			os.Exit(64)
		}
		err := d.Watch(ctx, flag.Arg(0), func(res driver.FileResult) {
			reportFile(res)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "jscodemod: %s\n", err)
			os.Exit(70)
		}

	case flag.NArg() == 0:
		if *outDirFlag != "" || *inPlaceFlag {
			fmt.Fprintf(os.Stderr, "Usage: -o and -w need input files\n")
			os.Exit(64)
		}
		if !runStdin(d) {
			os.Exit(70) // Exit code 70: internal software error
		}

	default:
		if !runFiles(ctx, d, logger, flag.Args(), *outDirFlag == "" && !*inPlaceFlag) {
			os.Exit(70)
		}
	}
}

// splitRules turns the -rules value into keys; blanks are dropped by Select.
func splitRules(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func runStdin(d *driver.Driver) bool {
	content, err := source.Decode(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read stdin: %s\n", err)
		return false
	}
	out, err := d.TransformSource(source.NewStdinSource(content))
	if err != nil {
		displayError(err)
		return false
	}
	fmt.Print(out.Code)
	out.Report.Print(os.Stderr, out.Source.DisplayPath())
	return true
}

// runFiles transforms every file under paths. With toStdout set a single
// input file is printed instead of written.
func runFiles(ctx context.Context, d *driver.Driver, logger *zap.Logger, paths []string, toStdout bool) bool {
	files, err := driver.CollectFiles(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jscodemod: %s\n", err)
		return false
	}
	if toStdout && len(files) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: pass -o or -w to transform more than one file\n")
		os.Exit(64)
	}

	results, err := d.TransformFiles(ctx, files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jscodemod: %s\n", err)
		return false
	}

	ok := true
	var total transform.Report
	changed := 0
	for _, res := range results {
		if res.Err == nil {
			if toStdout {
				fmt.Print(res.Output.Code)
			}
			total.Merge(res.Output.Report)
			if res.Output.Changed() {
				changed++
			}
		}
		if !reportFile(res) {
			ok = false
		}
	}
	logger.Info("done",
		zap.Int("files", len(results)),
		zap.Int("changed", changed),
		zap.Int("warnings", total.Warnings()))
	return ok
}

// reportFile prints the diagnostics for one result and reports whether it
// succeeded.
func reportFile(res driver.FileResult) bool {
	if res.Err != nil {
		displayError(res.Err)
		return false
	}
	res.Output.Report.Print(os.Stderr, res.Path)
	if res.Written != "" && res.Written != res.Path {
		fmt.Fprintf(os.Stderr, "%s -> %s\n", res.Path, res.Written)
	}
	return true
}

func displayError(err error) {
	var serr *driver.SourceError
	if stderrors.As(err, &serr) {
		errors.DisplayErrors(os.Stderr, serr.Source.Content, serr.Errors)
		return
	}
	var terr *errors.TransformError
	if stderrors.As(err, &terr) && terr.Source != nil {
		errors.DisplayErrors(os.Stderr, terr.Source.Content, []errors.CodemodError{terr})
		return
	}
	fmt.Fprintf(os.Stderr, "jscodemod: %s\n", err)
}
