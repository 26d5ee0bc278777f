//go:build windows

package launcher

import "os/exec"

func detach(cmd *exec.Cmd) {}
