// Package infernal drives the cmsearch covariance-model search binary and
// parses its tabular output into attC hit tables.
package infernal

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yumyai/intfinder/logger"
	"go.uber.org/zap"
)

// ToolError reports an external search process that could not be started or
// exited non-zero. The full command line is kept for diagnostics.
type ToolError struct {
	Cmd string
	Err error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Cmd, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ResultFile returns the path of the first-pass human-readable output for a
// replicon.
func ResultFile(outDir, repliconID string) string {
	return filepath.Join(outDir, repliconID+"_attc.res")
}

// TableFile returns the path of the first-pass --tblout output for a
// replicon.
func TableFile(outDir, repliconID string) string {
	return filepath.Join(outDir, repliconID+"_attc_table.res")
}

// Run invokes the first-pass (heuristic) cmsearch over a whole replicon,
// writing <id>_attc.res and <id>_attc_table.res into outDir.
func Run(repliconPath, repliconID, cmsearchPath, outDir, modelAttc string, cpu int) error {
	args := []string{
		"--cpu", strconv.Itoa(cpu),
		"-o", ResultFile(outDir, repliconID),
		"--tblout", TableFile(outDir, repliconID),
		"-E", "10",
		modelAttc,
		repliconPath,
	}
	return runCmsearch(cmsearchPath, args)
}

func runCmsearch(cmsearchPath string, args []string) error {
	cmdline := strings.Join(append([]string{cmsearchPath}, args...), " ")
	logger.Debug("run cmsearch", zap.String("cmd", cmdline))

	cmd := exec.Command(cmsearchPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return &ToolError{Cmd: cmdline, Err: err}
	}
	return nil
}
