// Command jackc compiles every .jack file in a directory into a
// sibling .vm file.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/zhixiangli/nand2tetris/internal/clog"
	"github.com/zhixiangli/nand2tetris/internal/fileset"
	"github.com/zhixiangli/nand2tetris/internal/jack"
	"github.com/zhixiangli/nand2tetris/internal/token"
	"github.com/zhixiangli/nand2tetris/internal/vmwriter"
)

var log clog.Logger

func main() {
	trace := flag.Bool("trace", false, "log every emitted VM command")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <dir-or-file.jack>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetTrace(*trace)
	defer os.Exit(log.ExitCode())

	if flag.NArg() != 1 {
		flag.Usage()
		log.ErrorIf(fmt.Errorf("jackc: exactly one directory or .jack file is required"))
		return
	}

	files, err := fileset.Collect(flag.Arg(0), ".jack")
	if log.ErrorIf(err) != nil {
		return
	}

	// Each file's tokenize+compile is independent, so the
	// CPU-bound work runs concurrently; only the resulting writes are
	// sequential, since they touch distinct sibling .vm paths anyway.
	outputs, err := fileset.MapConcurrent(files, func(path string) ([]byte, error) {
		return compileFile(path, log.Leveledf("TRACE"))
	})
	if log.ErrorIf(err) != nil {
		return
	}

	for i, path := range files {
		outPath := fileset.OutputPath(path, ".vm")
		if err := os.WriteFile(outPath, outputs[i], 0644); log.ErrorIf(err) != nil {
			return
		}
		log.Printf("compiled %s -> %s", path, outPath)
	}
}

func compileFile(path string, trace func(format string, args ...interface{})) ([]byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jackc: reading %q: %w", path, err)
	}

	tokens, err := token.All(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("jackc: lexing %q: %w", path, err)
	}

	var buf bytes.Buffer
	writer := vmwriter.New(&buf)
	writer.SetTrace(trace)
	compiler := jack.New(tokens, writer)
	if err := compiler.Compile(); err != nil {
		return nil, fmt.Errorf("jackc: compiling %q: %w", path, err)
	}
	return buf.Bytes(), nil
}
