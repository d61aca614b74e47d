package vmtranslate

import (
	"fmt"
	"strings"
)

// File is one named VM source file.
type File struct {
	Name   string // basename without extension, used for static-segment qualification
	Source string
}

// BootConfig controls bootstrap-code injection for a multi-file
// translation run.
type BootConfig struct {
	Enabled bool
	SP      *int // nil means "do not set SP explicitly"
	Trace   func(format string, args ...interface{})
}

// TranslateProgram translates each file independently (each gets its
// own Translator instance and label counter, so labels never collide
// across files even before static-segment qualification is applied)
// and concatenates the results in the given order, optionally
// prefixing bootstrap code.
//
// Bootstrap code is injected only if cfg.Enabled and the combined
// output actually defines Sys.init.
func TranslateProgram(files []File, cfg BootConfig) (string, error) {
	var parts []string
	for _, f := range files {
		t := New(f.Name)
		if cfg.Trace != nil {
			t.SetTrace(cfg.Trace)
		}
		for _, line := range StripCommentsAndBlanks(f.Source) {
			if err := t.TranslateLine(line); err != nil {
				return "", fmt.Errorf("%s: %w", f.Name, err)
			}
		}
		parts = append(parts, t.Output())
	}

	body := strings.Join(parts, "")

	if cfg.Enabled && strings.Contains(body, "(Sys.init)") {
		var boot strings.Builder
		if cfg.SP != nil {
			fmt.Fprintf(&boot, "@%d\nD=A\n@SP\nM=D\n", *cfg.SP)
		}
		boot.WriteString("@Sys.init\n0;JMP\n")
		return boot.String() + body, nil
	}
	return body, nil
}
