package driver

import (
	stderrors "errors"

	goparser "github.com/dop251/goja/parser"

	"jscodemod/pkg/errors"
	"jscodemod/pkg/parser"
	"jscodemod/pkg/source"
)

// Verify parses code, the emitted form of sf, with goja's parser. A failure
// means the emitter or a rule produced invalid JavaScript. The error position
// refers to the emitted code.
func Verify(sf *source.SourceFile, code string) error {
	_, err := goparser.ParseFile(nil, sf.DisplayPath(), code, 0)
	if err == nil {
		return nil
	}

	verr := &errors.TransformError{
		Position: errors.Position{Source: source.NewSourceFile(sf.Name, sf.Path, code)},
		Msg:      "emitted code does not parse: " + err.Error(),
		Cause:    err,
	}
	var list goparser.ErrorList
	if stderrors.As(err, &list) && len(list) > 0 {
		verr.Line, verr.Column = list[0].Position.Line, list[0].Position.Column
		verr.Msg = "emitted code does not parse: " + list[0].Message
	}
	return verr
}

// VerifyModule checks the emitted form of a module. goja's parser only reads
// scripts, so modules are re-parsed with package parser instead.
func VerifyModule(sf *source.SourceFile, code string) error {
	_, errs := parser.Parse(source.NewSourceFile(sf.Name, sf.Path, code))
	if len(errs) == 0 {
		return nil
	}
	pos := errs[0].Pos()
	return &errors.TransformError{
		Position: pos,
		Msg:      "emitted code does not parse: " + errs[0].Message(),
		Cause:    errs[0],
	}
}

// isModule reports whether program has import or export declarations.
func isModule(program *parser.Program) bool {
	for _, stmt := range program.Statements {
		switch stmt.(type) {
		case *parser.ImportDeclaration, *parser.ExportNamedDeclaration,
			*parser.ExportDefaultDeclaration, *parser.ExportAllDeclaration:
			return true
		}
	}
	return false
}
