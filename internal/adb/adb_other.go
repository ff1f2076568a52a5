//go:build !windows

package adb

import "os/exec"

func hideWindowsWindow(cmd *exec.Cmd) {}
