// Command vmtranslate translates stack-VM commands into Hack
// assembly. Given a directory, every .vm file inside
// is concatenated (sorted by name) into a single <dir>.asm.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zhixiangli/nand2tetris/internal/clog"
	"github.com/zhixiangli/nand2tetris/internal/fileset"
	"github.com/zhixiangli/nand2tetris/internal/vmtranslate"
)

var log clog.Logger

func main() {
	booting := flag.Bool("booting", false, "inject bootstrap code and jump to Sys.init, if present")
	noBooting := flag.Bool("no-booting", false, "explicitly disable bootstrap injection (default)")
	sp := flag.Int("sp", -1, "initial stack pointer value when bootstrapping (-1 means unset)")
	trace := flag.Bool("trace", false, "log every translated line")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [--booting|--no-booting] [--sp N] <dir-or-file.vm>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetTrace(*trace)
	defer os.Exit(log.ExitCode())

	if flag.NArg() != 1 {
		flag.Usage()
		log.ErrorIf(fmt.Errorf("vmtranslate: exactly one directory or .vm file is required"))
		return
	}

	enableBoot := *booting && !*noBooting

	input := flag.Arg(0)
	files, err := fileset.Collect(input, ".vm")
	if log.ErrorIf(err) != nil {
		return
	}

	vmFiles, err := fileset.MapConcurrent(files, readVMFile)
	if log.ErrorIf(err) != nil {
		return
	}

	cfg := vmtranslate.BootConfig{Enabled: enableBoot, Trace: log.Leveledf("TRACE")}
	if *sp >= 0 {
		cfg.SP = sp
	}

	asm, err := vmtranslate.TranslateProgram(vmFiles, cfg)
	if log.ErrorIf(err) != nil {
		return
	}

	outPath, err := outputPath(input)
	if log.ErrorIf(err) != nil {
		return
	}

	if err := os.WriteFile(outPath, []byte(asm), 0644); log.ErrorIf(err) != nil {
		return
	}
	log.Printf("translated %s -> %s", input, outPath)
}

func readVMFile(path string) (vmtranslate.File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return vmtranslate.File{}, fmt.Errorf("vmtranslate: reading %q: %w", path, err)
	}
	return vmtranslate.File{Name: fileset.BaseName(path), Source: string(source)}, nil
}

func outputPath(input string) (string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return "", fmt.Errorf("vmtranslate: cannot stat %q: %w", input, err)
	}
	if info.IsDir() {
		return fmt.Sprintf("%s/%s.asm", input, fileset.BaseName(input)), nil
	}
	return fileset.OutputPath(input, ".asm"), nil
}
