// Package tapshell runs the shell fragment configured against a tap
// gesture. Unlike internal/core/automation's ScriptAction in the teacher
// repo, which waits for CombinedOutput inside the calling goroutine, a
// tap-triggered shell must never block the 100ms poll tick: it is spawned
// and left to run, with only its exit logged.
package tapshell

import (
	"context"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

const runTimeout = 30 * time.Second

// Run spawns shellFragment via "sh -c" and returns immediately; the
// command's completion (or failure) is logged asynchronously once it
// exits. An empty shellFragment is a no-op.
func Run(log *logrus.Entry, shellFragment string) {
	if shellFragment == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	cmd := exec.CommandContext(ctx, "sh", "-c", shellFragment)

	go func() {
		defer cancel()
		output, err := cmd.CombinedOutput()
		if err != nil {
			log.WithError(err).WithField("output", string(output)).Warn("tap shell command failed")
			return
		}
		log.WithField("shell", shellFragment).Debug("tap shell command completed")
	}()
}
