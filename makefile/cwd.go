package makefile

import (
	"strings"

	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/system"
)

// cwd runs cd commands in-process and puts the original directory back
// when the rule's commands are done.
type cwd struct {
	dir     system.WorkDir
	old     string
	changed bool
}

// apply changes directory if cmd is a plain cd command and reports
// whether it was one. A failed change is only a warning.
func (c *cwd) apply(cmd string) bool {
	s := strings.TrimLeft(cmd, " \t@-")
	if len(s) < 3 || !strings.EqualFold(s[:2], "cd") || (s[2] != ' ' && s[2] != '\t') {
		return false
	}
	if strings.Contains(s, "&&") {
		return false
	}
	target := strings.Trim(s[2:], " \t")
	if len(target) >= 2 && target[0] == '"' && target[len(target)-1] == '"' {
		target = target[1 : len(target)-1]
	}
	if !c.changed {
		old, err := c.dir.Getwd()
		if err != nil {
			log.Warnf("cannot change directory to [%s]: %v", target, err)
			return true
		}
		c.old = old
	}
	if err := c.dir.Chdir(target); err != nil {
		log.Warnf("cannot change directory to [%s]: %v", target, err)
		return true
	}
	log.Debugf("make: changed directory to [%s]", target)
	c.changed = true
	return true
}

func (c *cwd) restore() {
	if !c.changed {
		return
	}
	if err := c.dir.Chdir(c.old); err != nil {
		log.Warnf("cannot change directory back to [%s]: %v", c.old, err)
	}
	c.changed = false
}

func (c *cwd) String() string {
	d, err := c.dir.Getwd()
	if err != nil {
		return "?"
	}
	return d
}
