package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rubiojr/gnmake/config"
	"github.com/rubiojr/gnmake/expand"
	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/makefile"
	"github.com/rubiojr/gnmake/preprocess"
	"github.com/rubiojr/gnmake/rules"
	"github.com/rubiojr/gnmake/scanner"
	"github.com/rubiojr/gnmake/system"
	"github.com/rubiojr/gnmake/vars"
)

// predefined macros, used unless the command line sets them
var predefined = []Macro{
	{"AS", "ml64"},
	{"CC", "cl"},
	{"CPP", "cl"},
	{"CXX", "cl"},
	{"LINK", "link"},
	{"RC", "rc"},
}

// build reads the makefile named in cfg and makes targets, or the
// default targets when there are none.
func build(ctx context.Context, cfg *config.Config, macros []Macro, targets []string, argv0 string) (err error) {
	host := system.OS{}
	v := vars.New(host)
	for _, m := range macros {
		v.Set(m.Name, m.Value)
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	v.Set("MAKEFLAGS", cfg.MakeFlags())
	v.Set("MAKEDIR", wd)
	v.SetDefault("MAKE", argv0)
	for _, m := range predefined {
		v.SetDefault(m.Name, m.Value)
	}

	if cfg.LogStart {
		log.Infof("start: cwd=[%s]", wd)
		log.Infof("start: pid=[%d]", os.Getpid())
		log.Infof("start: args: [%s]", strings.Join(os.Args[1:], "]["))
		log.Infof("start: makefile: [%s]", cfg.Makefile)
		defer func() {
			code := 0
			if err != nil {
				code = 2
			}
			log.Infof("end: pid=[%d]: exit %d", os.Getpid(), code)
		}()
	}

	lines, err := readMakefile(cfg)
	if err != nil {
		return err
	}

	x := expand.New(host, cfg.ForceEnv)
	p := preprocess.New(cfg.Makefile, x, v)
	p.Out = stdout
	if err := p.Process(lines); err != nil {
		return err
	}
	r, err := rules.Parse(lines)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Makefile, err)
	}

	m, err := makefile.New(cfg, x, v, r)
	if err != nil {
		return err
	}
	m.Stdout = stdout
	if cfg.Dump {
		if err := m.Dump(stdout); err != nil {
			return err
		}
	}

	if len(targets) == 0 {
		targets = []string{""}
	}
	for _, t := range targets {
		if err := m.Make(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func readMakefile(cfg *config.Config) ([]*scanner.Line, error) {
	f, err := os.Open(cfg.Makefile)
	if err != nil {
		return nil, fmt.Errorf("cannot open makefile: %w", err)
	}
	defer f.Close()

	ls := scanner.New(f)
	if cfg.LogMakefile {
		ls.OnPhysical = func(num int, text string) {
			log.Infof("%s(%d): %s", cfg.Makefile, num, text)
		}
	}
	var lines []*scanner.Line
	for {
		l, ok := ls.Next()
		if !ok {
			break
		}
		lines = append(lines, l)
	}
	return lines, ls.Err()
}
