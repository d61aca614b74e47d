// Command hackasm assembles symbolic Hack assembly text into the
// 16-bit binary form a CPU emulator loads.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zhixiangli/nand2tetris/internal/clog"
	"github.com/zhixiangli/nand2tetris/internal/fileset"
	"github.com/zhixiangli/nand2tetris/internal/hackasm"
)

var log clog.Logger

func main() {
	trace := flag.Bool("trace", false, "log every encoded instruction")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <file.asm>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetTrace(*trace)
	defer os.Exit(log.ExitCode())

	if flag.NArg() != 1 {
		flag.Usage()
		log.ErrorIf(fmt.Errorf("hackasm: exactly one .asm file is required"))
		return
	}

	path := flag.Arg(0)
	if filepath.Ext(path) != ".asm" {
		log.ErrorIf(fmt.Errorf("hackasm: %q does not end in .asm", path))
		return
	}

	source, err := os.ReadFile(path)
	if log.ErrorIf(err) != nil {
		return
	}

	binary, err := hackasm.AssembleTrace(string(source), log.Leveledf("TRACE"))
	if log.ErrorIf(err) != nil {
		return
	}

	outPath := fileset.OutputPath(path, ".hack")
	if err := os.WriteFile(outPath, []byte(binary), 0644); log.ErrorIf(err) != nil {
		return
	}
	log.Printf("assembled %s -> %s", path, outPath)
}
