package ime

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"goanthy/internal/keybind"
)

// ErrNoHelper is returned when no helper program is configured for a
// command.
var ErrNoHelper = errors.New("ime: no helper program")

// Launcher starts the external helper behind dict_admin, add_word and
// start_setup.
type Launcher interface {
	Launch(cmd keybind.Command) error
}

// ExecLauncher runs helper programs as detached child processes.
type ExecLauncher struct {
	Commands map[keybind.Command][]string
	Log      *slog.Logger
}

// DefaultHelpers returns the usual helper command lines. configPath is
// opened by start_setup.
func DefaultHelpers(configPath string) map[keybind.Command][]string {
	return map[keybind.Command][]string{
		keybind.DictAdmin:  {"kasumi"},
		keybind.AddWord:    {"kasumi", "-a"},
		keybind.StartSetup: {"xdg-open", configPath},
	}
}

// Launch implements Launcher.
func (l *ExecLauncher) Launch(cmd keybind.Command) error {
	argv := l.Commands[cmd]
	if len(argv) == 0 {
		return fmt.Errorf("%w for %s", ErrNoHelper, cmd)
	}
	c := exec.Command(argv[0], argv[1:]...)
	if err := c.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	go func() {
		if err := c.Wait(); err != nil && l.Log != nil {
			l.Log.Warn("helper exited", "command", cmd.String(), "error", err)
		}
	}()
	return nil
}
