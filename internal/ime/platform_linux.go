//go:build linux

package ime

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// LinuxPlatform registers the engine with IBus through a per-user
// component file.
type LinuxPlatform struct {
	cfg PlatformConfig
}

// NewPlatform returns the platform integration for this OS.
func NewPlatform(cfg PlatformConfig) Platform {
	return &LinuxPlatform{cfg: cfg}
}

func (p *LinuxPlatform) Name() string { return "linux" }

// Install writes the component file and restarts ibus-daemon so it picks
// the engine up.
func (p *LinuxPlatform) Install() error {
	data, err := ComponentXML(p.cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.cfg.ComponentDir, 0o755); err != nil {
		return fmt.Errorf("create component dir: %w", err)
	}
	if err := os.WriteFile(componentPath(p.cfg), data, 0o644); err != nil {
		return fmt.Errorf("write component: %w", err)
	}
	p.restart()
	return nil
}

func (p *LinuxPlatform) Uninstall() error {
	if err := os.Remove(componentPath(p.cfg)); err != nil && !os.IsNotExist(err) {
		return err
	}
	p.restart()
	return nil
}

func (p *LinuxPlatform) restart() {
	// ibus may not be running; the component is read on its next start.
	_ = exec.Command("ibus", "restart").Run()
}

func (p *LinuxPlatform) IsInstalled() bool {
	_, err := os.Stat(componentPath(p.cfg))
	return err == nil
}

func (p *LinuxPlatform) IsActive() bool {
	out, err := exec.Command("ibus", "engine").Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == EngineName
}

func (p *LinuxPlatform) Activate() error {
	if err := exec.Command("ibus", "engine", EngineName).Run(); err != nil {
		return fmt.Errorf("select engine %s: %w", EngineName, err)
	}
	return nil
}

var _ Platform = (*LinuxPlatform)(nil)
