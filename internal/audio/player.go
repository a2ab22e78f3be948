package audio

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/luwen/lingoflash/internal/logger"
)

// ExecPlayer plays a URL by running an external player command (mpv,
// ffplay, afplay and the like all accept a URL argument). The manager
// guarantees exclusivity, but the player also kills its own previous
// process before starting a new one so a crashed manager cannot leak two.
type ExecPlayer struct {
	command string
	args    []string
	log     *logger.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

func NewExecPlayer(command string, args ...string) *ExecPlayer {
	if strings.TrimSpace(command) == "" {
		command = "mpv"
	}
	if len(args) == 0 && command == "mpv" {
		args = []string{"--no-video", "--really-quiet"}
	}
	return &ExecPlayer{
		command: command,
		args:    args,
		log:     logger.Default().WithPrefix("player"),
	}
}

var _ Player = (*ExecPlayer)(nil)

// Play starts the player process and returns once it is running. The
// process outlives the caller's context; Stop owns its termination.
func (p *ExecPlayer) Play(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	cmd := exec.Command(p.command, append(append([]string{}, p.args...), url)...)
	if err := cmd.Start(); err != nil {
		p.log.Error("failed to start %s: %v", p.command, err)
		return err
	}
	p.cmd = cmd
	p.log.Debug("playback started: pid=%d", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
		}
		p.mu.Unlock()
		if err != nil {
			// Killed on Stop also lands here; only worth a debug line.
			p.log.Debug("player exited: %v", err)
		}
	}()
	return nil
}

// Stop kills the active player process, if any.
func (p *ExecPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *ExecPlayer) stopLocked() {
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		p.cmd = nil
	}
}
