package ime

import (
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
)

// ErrUnsupported is returned by platforms without an input method
// framework.
var ErrUnsupported = errors.New("ime: input method framework not supported on this platform")

// Platform installs the engine into the desktop's input method framework.
type Platform interface {
	Name() string
	Install() error
	Uninstall() error
	IsInstalled() bool
	IsActive() bool
	Activate() error
}

// PlatformConfig describes the installed engine.
type PlatformConfig struct {
	// EnginePath is the engine binary the framework launches.
	EnginePath string
	// ComponentDir receives the component description.
	ComponentDir string
	// IconPath is shown next to the engine name.
	IconPath string
	Version  string
}

// DefaultPlatformConfig points at the running executable and the per-user
// IBus component directory.
func DefaultPlatformConfig() PlatformConfig {
	exe, err := os.Executable()
	if err != nil {
		exe = EngineName
	}
	data := os.Getenv("XDG_DATA_HOME")
	if data == "" {
		home, _ := os.UserHomeDir()
		data = filepath.Join(home, ".local", "share")
	}
	return PlatformConfig{
		EnginePath:   exe,
		ComponentDir: filepath.Join(data, "ibus", "component"),
		IconPath:     filepath.Join(data, "icons", EngineName+".png"),
		Version:      EngineVersion,
	}
}

// Engine identity as registered with IBus.
const (
	EngineName    = "goanthy"
	EngineVersion = "1.0.0"
	BusName       = "org.freedesktop.IBus.GoAnthy"
)

type component struct {
	XMLName     xml.Name `xml:"component"`
	Name        string   `xml:"name"`
	Description string   `xml:"description"`
	Exec        string   `xml:"exec"`
	Version     string   `xml:"version"`
	Author      string   `xml:"author"`
	License     string   `xml:"license"`
	Textdomain  string   `xml:"textdomain"`
	Engines     []engine `xml:"engines>engine"`
}

type engine struct {
	Name        string `xml:"name"`
	Language    string `xml:"language"`
	License     string `xml:"license"`
	Author      string `xml:"author"`
	Icon        string `xml:"icon"`
	Layout      string `xml:"layout"`
	LongName    string `xml:"longname"`
	Description string `xml:"description"`
	Rank        int    `xml:"rank"`
	Symbol      string `xml:"symbol"`
	Setup       string `xml:"setup,omitempty"`
}

// ComponentXML renders the IBus component description.
func ComponentXML(cfg PlatformConfig) ([]byte, error) {
	c := component{
		Name:        BusName,
		Description: "Anthy-style Japanese input method",
		Exec:        cfg.EnginePath + " -ibus",
		Version:     cfg.Version,
		Author:      "goanthy authors",
		License:     "GPL",
		Textdomain:  EngineName,
		Engines: []engine{{
			Name:        EngineName,
			Language:    "ja",
			License:     "GPL",
			Author:      "goanthy authors",
			Icon:        cfg.IconPath,
			Layout:      "jp",
			LongName:    "Anthy (Go)",
			Description: "Japanese input with romaji, kana and thumb-shift typing",
			Rank:        99,
			Symbol:      "あ",
		}},
	}
	out, err := xml.MarshalIndent(c, "", "    ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func componentPath(cfg PlatformConfig) string {
	return filepath.Join(cfg.ComponentDir, EngineName+".xml")
}
