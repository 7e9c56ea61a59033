//go:build !linux

package ime

// OtherPlatform is used where IBus is unavailable.
type OtherPlatform struct{}

// NewPlatform returns the platform integration for this OS.
func NewPlatform(PlatformConfig) Platform { return OtherPlatform{} }

func (OtherPlatform) Name() string { return "unsupported" }

func (OtherPlatform) Install() error { return ErrUnsupported }

func (OtherPlatform) Uninstall() error { return ErrUnsupported }

func (OtherPlatform) IsInstalled() bool { return false }

func (OtherPlatform) IsActive() bool { return false }

func (OtherPlatform) Activate() error { return ErrUnsupported }
