package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/resumetools/resume-optimizer/internal/util"

	"go.uber.org/zap"
)

const pdflatexLogLimit = 2000

// Common install locations checked when pdflatex is not on PATH.
var texEnginePaths = []string{
	"/Library/TeX/texbin/pdflatex",
	"/usr/local/texlive/bin/pdflatex",
	"/usr/local/bin/pdflatex",
	"/usr/bin/pdflatex",
}

// lookupTexEngine is swappable in tests.
var lookupTexEngine = findPDFLaTeX

func findPDFLaTeX() string {
	if path, err := exec.LookPath("pdflatex"); err == nil {
		return path
	}
	for _, path := range texEnginePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// compilePDF runs pdflatex on the .tex file. Whatever goes wrong, the .tex
// source stays on disk so it can be compiled manually.
func (p *Pipeline) compilePDF(ctx context.Context, texFile string) error {
	engine := lookupTexEngine()
	if engine == "" {
		return fmt.Errorf("pdflatex not found on PATH or in common TeX locations; latex source kept at %s", texFile)
	}

	dir := filepath.Dir(texFile)
	var output bytes.Buffer

	// Twice, so cross references resolve.
	for pass := 1; pass <= 2; pass++ {
		cmd := exec.CommandContext(ctx, engine, "-interaction=nonstopmode", filepath.Base(texFile))
		cmd.Dir = dir
		output.Reset()
		cmd.Stdout = &output
		cmd.Stderr = &output

		if err := cmd.Run(); err != nil {
			p.logger.Debug("pdflatex failed",
				zap.Int("pass", pass),
				zap.String("output", util.TruncateForLog(output.String(), pdflatexLogLimit)),
			)
			return fmt.Errorf("pdflatex pass %d: %w; latex source kept at %s", pass, err, texFile)
		}
	}

	pdfFile := strings.TrimSuffix(texFile, ".tex") + ".pdf"
	if _, err := os.Stat(pdfFile); err != nil {
		return fmt.Errorf("pdflatex produced no output at %s; latex source kept at %s", pdfFile, texFile)
	}

	return nil
}
