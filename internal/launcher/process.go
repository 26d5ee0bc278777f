package launcher

import (
	"os/exec"

	"github.com/abcdlsj/blink/internal/logger"
)

// ProcessLauncher starts actions as detached OS processes. Output is not
// captured and failures are only logged.
type ProcessLauncher struct {
	// lookPath resolves the program; replaced in tests.
	lookPath func(string) (string, error)
}

func NewProcessLauncher() *ProcessLauncher {
	return &ProcessLauncher{lookPath: exec.LookPath}
}

func (p *ProcessLauncher) Launch(a Action) {
	if len(a.Command) == 0 {
		return
	}
	bin, err := p.lookPath(a.Command[0])
	if err != nil {
		logger.Warn("action program not found", "name", a.Name, "program", a.Command[0], "error", err)
		return
	}
	cmd := exec.Command(bin, a.Command[1:]...)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		logger.Warn("action failed to start", "name", a.Name, "error", err)
		return
	}
	logger.Info("action started", "name", a.Name, "pid", cmd.Process.Pid)
	_ = cmd.Process.Release()
}
