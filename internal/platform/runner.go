package platform

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"
)

// Runner executes external commands.
type Runner interface {
	LookPath(file string) (string, error)
	// Run executes a short command to completion.
	Run(ctx context.Context, name string, args ...string) error
	// Start launches a long-running command such as an audio player.
	Start(name string, args ...string) (Process, error)
}

// Process is a command started by Runner.Start.
type Process interface {
	Stop() error
}

// ExecRunner runs real commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (ExecRunner) Start(name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
}

// Stop kills the process unless it already exited.
func (p *execProcess) Stop() error {
	var err error
	p.once.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}
		if killErr := p.cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			err = killErr
			return
		}
		<-p.done
	})
	return err
}
