// The cc package contains the driver for our compiler.
//
// In brief we go through a multi-pass pipeline:
//
//  1. Preprocess the input file with the system C preprocessor.
//  2. Lex, parse, resolve, tackify, select, allocate and legalize it.
//  3. Emit AT&T assembly and hand it to the system assembler/linker.
//
// Each of the four debug flags (--lex, --parse, --tackify, --codegen)
// dumps the named pass's IR via go-spew and exits before any
// assembly is written; this is the only place those flags are
// consulted.
package cc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/skx/cc-subset-amd64/codegen"
	"github.com/skx/cc-subset-amd64/emit"
	"github.com/skx/cc-subset-amd64/lexer"
	"github.com/skx/cc-subset-amd64/parser"
	"github.com/skx/cc-subset-amd64/resolver"
	"github.com/skx/cc-subset-amd64/tacky"
	"github.com/skx/cc-subset-amd64/token"
)

// Flags selects which, if any, debug dump the driver performs instead
// of producing assembly, plus whether pass-boundary tracing is on.
type Flags struct {
	Lex     bool
	Parse   bool
	Tackify bool
	Codegen bool
	Verbose bool
}

// Driver holds our object-state: the source path and the flags
// controlling how far the pipeline runs.
type Driver struct {
	path  string
	flags Flags
	log   *logrus.Logger
}

// New creates a new driver for the C source at path. Pass-boundary
// tracing is logged at Debug level, gated behind flags.Verbose; fatal
// compiler diagnostics bypass the logger entirely and are returned as
// plain errors for the caller to print.
func New(path string, flags Flags) *Driver {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if flags.Verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return &Driver{path: path, flags: flags, log: log}
}

// Run executes the full pipeline: preprocess, compile to assembly,
// and (unless a debug flag short-circuits it) assemble and link. It
// returns the path of the produced executable on success.
func (d *Driver) Run() (string, error) {
	base := strings.TrimSuffix(d.path, ".c")
	iPath := base + ".i"
	sPath := base + ".s"

	d.log.WithField("input", d.path).Debug("preprocessing")
	if err := d.preprocess(d.path, iPath); err != nil {
		return "", fmt.Errorf("preprocessing failed: %w", err)
	}

	source, err := os.ReadFile(iPath)
	if err != nil {
		return "", fmt.Errorf("reading preprocessed source: %w", err)
	}

	asm, done, err := d.compile(string(source))
	if err != nil {
		return "", err
	}
	if done {
		return "", nil
	}

	d.log.WithField("output", sPath).Debug("writing assembly")
	if err := os.WriteFile(sPath, []byte(asm), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", sPath, err)
	}

	d.log.WithField("output", base).Debug("assembling and linking")
	if err := d.assemble(sPath, base); err != nil {
		return "", fmt.Errorf("assembling failed: %w", err)
	}

	return base, nil
}

// compile runs every pass from lexing through emission, dumping and
// stopping early if a debug flag for that pass is set. The bool
// return reports whether a dump short-circuited the pipeline.
func (d *Driver) compile(source string) (string, bool, error) {
	l := lexer.New(source)

	if d.flags.Lex {
		return d.dumpLex(l)
	}

	prog, err := parser.Parse(l)
	if err != nil {
		return "", false, fmt.Errorf("parse error: %w", err)
	}
	if d.flags.Parse {
		spew.Dump(prog)
		return "", true, nil
	}

	resolved, err := resolver.Resolve(prog)
	if err != nil {
		return "", false, fmt.Errorf("resolve error: %w", err)
	}

	tac, err := tacky.Emit(resolved)
	if err != nil {
		return "", false, fmt.Errorf("tackify error: %w", err)
	}
	if d.flags.Tackify {
		spew.Dump(tac)
		return "", true, nil
	}

	selected, err := codegen.Select(tac)
	if err != nil {
		return "", false, fmt.Errorf("instruction selection error: %w", err)
	}
	allocated := codegen.Allocate(selected)
	legalized := codegen.Legalize(allocated)
	if d.flags.Codegen {
		spew.Dump(legalized)
		return "", true, nil
	}

	out, err := emit.Function(legalized)
	if err != nil {
		return "", false, fmt.Errorf("emit error: %w", err)
	}
	return out, false, nil
}

// dumpLex drains every token from l, printing it via go-spew, and
// returns early so compile stops after lexing.
func (d *Driver) dumpLex(l *lexer.Lexer) (string, bool, error) {
	for {
		tok, err := l.NextToken()
		if err != nil {
			return "", false, fmt.Errorf("lex error: %w", err)
		}
		spew.Dump(tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return "", true, nil
}

// preprocess invokes a system C preprocessor equivalent to "cc -E -P"
// to produce dst from src.
func (d *Driver) preprocess(src, dst string) error {
	cmd := exec.Command("cc", "-E", "-P", src, "-o", dst)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, stderr.String())
	}
	return nil
}

// assemble invokes a system assembler/linker equivalent to "cc" to
// turn sPath into an executable at outPath.
func (d *Driver) assemble(sPath, outPath string) error {
	cmd := exec.Command("cc", sPath, "-o", outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, stderr.String())
	}
	return nil
}

// Exec runs the compiled executable at path, connecting its standard
// streams to our own, and returns its exit code.
func Exec(path string) (int, error) {
	cmd := exec.Command(path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

