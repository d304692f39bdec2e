//go:build windows

package daemon

import "os/exec"

func detach(*exec.Cmd) {}
