package driver

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"jscodemod/pkg/errors"
	"jscodemod/pkg/parser"
	"jscodemod/pkg/rules"
	"jscodemod/pkg/source"
	"jscodemod/pkg/transform"
)

// Options configures a Driver. The CLI fills it from flags.
type Options struct {
	Rules         []string // Rule keys to run; empty runs every registered rule
	Verify        bool     // Re-parse every emitted program with an independent parser
	RejectFlagged bool     // Skip rewrites that carry warnings
	Workers       int      // Files transformed concurrently; <= 0 means GOMAXPROCS
	OutDir        string   // Write every output under this directory
	InPlace       bool     // Overwrite changed inputs
	Logger        *zap.Logger
}

// Driver runs the codemod over sources and files.
type Driver struct {
	opts   Options
	engine *transform.Engine
	cache  *contentCache
	logger *zap.Logger
}

// New resolves the selected rules and builds a driver. Unknown rule keys
// yield a *rules.UnknownRuleError.
func New(opts Options) (*Driver, error) {
	selected, err := rules.Default().Select(opts.Rules)
	if err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.OutDir != "" && opts.InPlace {
		return nil, fmt.Errorf("output directory and in-place rewriting are mutually exclusive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Driver{
		opts:   opts,
		engine: transform.NewEngine(selected, transform.Options{RejectFlagged: opts.RejectFlagged, Logger: logger}),
		cache:  newContentCache(),
		logger: logger.Named("driver"),
	}, nil
}

// Rules returns the rules the driver runs.
func (d *Driver) Rules() []transform.Rule {
	return d.engine.Rules()
}

// Output is the result of transforming one source.
type Output struct {
	Source *source.SourceFile
	Code   string // Emitted program; the input content when nothing changed
	Report *transform.Report
	Cached bool // Served from the content cache
}

// Changed reports whether any rewrite was applied.
func (o *Output) Changed() bool {
	return o.Report.Changed()
}

// SourceError carries the syntax errors of a source that failed to parse.
type SourceError struct {
	Source *source.SourceFile
	Errors []errors.CodemodError
}

func (e *SourceError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

// TransformSource parses sf, runs the rules and emits the result. Sources
// that no rule changed come back byte-for-byte; in changed ones only the
// rewritten statements are reprinted.
func (d *Driver) TransformSource(sf *source.SourceFile) (*Output, error) {
	if out, ok := d.cache.lookup(sf); ok {
		d.logger.Debug("cache hit", zap.String("file", sf.DisplayPath()))
		return out, nil
	}

	program, errs := parser.Parse(sf)
	if len(errs) > 0 {
		return nil, &SourceError{Source: sf, Errors: errs}
	}

	result, report := d.engine.Run(program)
	out := &Output{Source: sf, Code: sf.Content, Report: report}
	if report.Changed() {
		out.Code = d.emit(sf, program, result, report)
		if d.opts.Verify {
			verify := Verify
			if isModule(program) {
				verify = VerifyModule
			}
			if err := verify(sf, out.Code); err != nil {
				return nil, err
			}
		}
	}

	d.logger.Debug("transformed",
		zap.String("file", sf.DisplayPath()),
		zap.Bool("changed", out.Changed()),
		zap.Int("diagnostics", len(report.Diagnostics)))
	d.cache.store(sf, out)
	return out, nil
}

// emit prints result by splicing the rewritten statements into the input
// text, keeping its comments and layout. When the edits cannot be placed it
// prints the whole program.
func (d *Driver) emit(sf *source.SourceFile, program, result *parser.Program, report *transform.Report) string {
	if report.Edits != nil {
		if code, ok := transform.Splice(sf.Content, program, report.Edits); ok {
			return code
		}
	}
	d.logger.Debug("reprinting whole program", zap.String("file", sf.DisplayPath()))
	return parser.NewJSEmitter().Emit(result)
}
