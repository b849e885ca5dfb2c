//go:build !windows

package unison

import "syscall"

// getSysProcAttr leaves the child in the wrapper's process group so a terminal
// Ctrl-C reaches unison too.
func getSysProcAttr() *syscall.SysProcAttr {
	return nil
}
