// anthyctl is the maintenance CLI for the goanthy input method.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"goanthy/internal/config"
	"goanthy/internal/convert"
	"goanthy/internal/dict"
	"goanthy/internal/ime"
	"goanthy/internal/kana"
	"goanthy/internal/logging"
	"goanthy/internal/store"
)

var (
	configPath = flag.String("config", "", "path to config file")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch cmd {
	case "status":
		err = cmdStatus()
	case "install":
		err = platform().Install()
	case "uninstall":
		err = platform().Uninstall()
	case "activate":
		err = platform().Activate()
	case "config":
		err = cmdConfig(args)
	case "convert":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: anthyctl convert <reading>")
			os.Exit(1)
		}
		err = cmdConvert(strings.Join(args, ""))
	case "learn":
		err = cmdLearn(args)
	case "crashes":
		err = cmdCrashes()
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `anthyctl - Maintenance utility for goanthy

Usage: anthyctl [options] <command> [args]

Commands:
  status                    Show installation, config and learning status
  install                   Install the IBus component
  uninstall                 Remove the IBus component
  activate                  Switch IBus to the goanthy engine
  config check [file]       Validate a config file
  config show               Print the effective configuration
  config path               Print the config file location
  convert <reading>         Show segments and candidates (romaji or kana)
  learn ranked <reading>    Show learned candidates for a reading
  learn predict <prefix>    Show learned phrases for a prefix
  learn forget <reading>    Forget everything learned for a reading
  learn reset               Forget everything learned
  crashes                   List crash reports
  help                      Show this help message

Options:
  -config <path>  Path to config file (default: search the config directory)`)
}

func path() string {
	if *configPath != "" {
		return *configPath
	}
	return config.FindConfigFile()
}

func loadConfig() (*config.Config, error) {
	p := path()
	if _, err := os.Stat(p); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	cfg, err := config.LoadFile(p)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

func platform() ime.Platform {
	return ime.NewPlatform(ime.DefaultPlatformConfig())
}

func cmdStatus() error {
	p := platform()
	fmt.Println("=== goanthy Status ===")
	fmt.Println()
	fmt.Printf("Platform:   %s\n", p.Name())
	fmt.Printf("Installed:  %s\n", yesNo(p.IsInstalled()))
	fmt.Printf("Active:     %s\n", yesNo(p.IsActive()))
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Config:     %s (invalid: %v)\n", path(), err)
		return nil
	}
	fmt.Printf("Config:     %s\n", path())
	fmt.Printf("Input mode: %s, %s typing, %s segments\n",
		cfg.Common.InputMode, cfg.Common.TypingMethod, cfg.Common.SegmentMode)
	fmt.Printf("Shortcuts:  %s\n", cfg.Common.ShortcutType)
	fmt.Println()

	fmt.Println("Learning:")
	if !cfg.Learning.Enabled {
		fmt.Println("  Disabled")
		return nil
	}
	info, err := os.Stat(cfg.Learning.Path)
	if err != nil {
		fmt.Println("  No database found")
		return nil
	}
	fmt.Printf("  Database: %s (%s)\n", cfg.Learning.Path, formatBytes(info.Size()))
	st, err := store.Open(cfg.Learning.Path)
	if err != nil {
		fmt.Printf("  Unreadable: %v\n", err)
		return nil
	}
	defer st.Close()
	if v, err := st.Version(); err == nil {
		fmt.Printf("  Schema:   v%d\n", v)
	}
	return nil
}

func cmdConfig(args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "path":
		fmt.Println(path())
	case "check":
		p := path()
		if len(args) > 1 {
			p = args[1]
		}
		if _, err := config.LoadFile(p); err != nil {
			return err
		}
		fmt.Printf("%s: OK\n", p)
	case "show":
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	default:
		return fmt.Errorf("unknown config command %q", sub)
	}
	return nil
}

// reading turns romaji into hiragana and leaves kana as typed.
func reading(s string) string {
	buf := kana.NewBuffer(kana.Romaji)
	for _, r := range s {
		buf.Insert(r)
	}
	text, _ := buf.Render(kana.Hiragana, true)
	return text
}

func cmdConvert(input string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := dict.LoadLibrary(cfg.Dict.Files, cfg.Dict.Personalities, nil)
	if err != nil {
		return err
	}

	var learner dict.Learner
	if cfg.Learning.Enabled {
		if _, err := os.Stat(cfg.Learning.Path); err == nil {
			st, err := store.Open(cfg.Learning.Path)
			if err != nil {
				return err
			}
			defer st.Close()
			learner = st
		}
	}

	b := lib.NewBackend(learner, nil)
	r := reading(input)
	if err := b.SetSourceText(r); err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", r, b.Personality())
	for seg := range b.SegmentCount() {
		n := b.CandidateCount(seg)
		cands := make([]string, n)
		for i := range cands {
			cands[i] = b.CandidateText(seg, i)
		}
		fmt.Printf("  %d. %s: %s\n", seg+1, b.SegmentView(seg, convert.Unconverted), strings.Join(cands, " / "))
	}
	return nil
}

func cmdLearn(args []string) error {
	if len(args) < 1 || (args[0] != "reset" && len(args) < 2) {
		return fmt.Errorf("usage: anthyctl learn ranked|predict|forget <reading> | reset")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Learning.Path); err != nil {
		return fmt.Errorf("no learning database at %s", cfg.Learning.Path)
	}
	st, err := store.Open(cfg.Learning.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		return err
	}

	if args[0] == "reset" {
		if err := st.Reset(); err != nil {
			return err
		}
		fmt.Println("Learning history cleared")
		return nil
	}

	r := reading(args[1])
	switch args[0] {
	case "ranked":
		sels, err := st.Ranked(r)
		if err != nil {
			return err
		}
		for _, s := range sels {
			fmt.Printf("%-12s %4d  %s\n", s.Word, s.Count, s.LastUsed.Format(time.DateTime))
		}
	case "predict":
		phrases, err := st.Predict(r, dict.DefaultPredictLimit)
		if err != nil {
			return err
		}
		for _, p := range phrases {
			fmt.Printf("%-12s %-12s %4d\n", p.Reading, p.Text, p.Count)
		}
	case "forget":
		if err := st.Forget(r); err != nil {
			return err
		}
		fmt.Printf("Forgot %s\n", r)
	default:
		return fmt.Errorf("unknown learn command %q", args[0])
	}
	return nil
}

func cmdCrashes() error {
	h := logging.NewCrashHandler(logging.DefaultCrashDir(config.DataDir()), "anthyctl", nil)
	reports, err := h.Reports()
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No crash reports")
		return nil
	}
	for _, r := range reports {
		fmt.Printf("%s  %-10s %s\n", r.Timestamp.Format(time.DateTime), r.Component, r.PanicValue)
		for k, v := range r.Context {
			fmt.Printf("    %s=%s\n", k, v)
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
