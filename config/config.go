// Package config holds the options of one build session. A Config is
// created once by the command line layer and threaded explicitly into
// the preprocessor, the expander and the build engine.
package config

// Config is the build-session configuration.
type Config struct {
	// Makefile is the rule file to read.
	Makefile string
	// Dump prints macros and rules before building (-p).
	Dump bool
	// Quiet suppresses warnings (-c).
	Quiet bool
	// NoLogo is accepted for compatibility and has no effect.
	NoLogo bool
	// ForceEnv makes environment variables override makefile macros (-e).
	ForceEnv bool
	Verbose  bool
	Debug    int
	// LogStart logs the start of the build.
	LogStart bool
	// LogMakefile logs every line read from the makefile.
	LogMakefile bool
	// LogRunning logs each command before it runs.
	LogRunning bool
	// Ignore ignores the exit code of every command (-i).
	Ignore bool
	// DryRun prints commands without running them (-n).
	DryRun bool
	// All treats every target as out of date (-a).
	All bool
	// Silent stops commands being echoed (-s).
	Silent bool
	// Keep keeps here-document temporary files.
	Keep bool
}

// MakeFlags returns the MAKEFLAGS letters for the options in effect.
func (c *Config) MakeFlags() string {
	var flags []byte
	for _, f := range []struct {
		on     bool
		letter byte
	}{
		{c.Dump, 'P'},
		{c.Quiet, 'C'},
		{c.ForceEnv, 'E'},
		{c.Ignore, 'I'},
		{c.DryRun, 'N'},
		{c.All, 'A'},
		{c.Silent, 'S'},
	} {
		if f.on {
			flags = append(flags, f.letter)
		}
	}
	return string(flags)
}
