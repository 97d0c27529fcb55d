package sound

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// ExecPlayer plays assets by spawning an external player process (aplay by
// default). Play returns as soon as the process has started.
type ExecPlayer struct {
	command string
	args    []string

	mu    sync.Mutex
	procs map[*exec.Cmd]struct{}
}

// NewExecPlayer creates a player that runs "command args... asset".
func NewExecPlayer(command string, args ...string) *ExecPlayer {
	return &ExecPlayer{
		command: command,
		args:    args,
		procs:   make(map[*exec.Cmd]struct{}),
	}
}

// NewAplayPlayer creates a player using "aplay -q".
func NewAplayPlayer() *ExecPlayer {
	return NewExecPlayer("aplay", "-q")
}

// Play starts the player process for asset.
func (p *ExecPlayer) Play(asset string) error {
	args := append(append([]string(nil), p.args...), asset)
	cmd := exec.Command(p.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.command, err)
	}

	p.mu.Lock()
	p.procs[cmd] = struct{}{}
	p.mu.Unlock()

	go func() {
		_ = cmd.Wait()
		p.mu.Lock()
		delete(p.procs, cmd)
		p.mu.Unlock()
	}()
	return nil
}

// StopAll kills every player process started by this player that is still running.
func (p *ExecPlayer) StopAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for cmd := range p.procs {
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Running returns the number of live player processes.
func (p *ExecPlayer) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.procs)
}
