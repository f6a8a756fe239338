package main

import "os"

// init runs before the TUI packages touch the terminal. Scripted subcommands
// write plain text that is often piped into other tools, so terminal probing
// (background colour and cursor queries) is switched off for them by setting
// CI=1, which termenv honours.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args[1:], os.Getenv("FUNDTRAIL_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

var scriptedCommands = map[string]bool{
	"holds":   true,
	"path":    true,
	"export":  true,
	"serve":   true,
	"version": true,
	"help":    true,
}

func shouldSuppressTTYQueries(args []string, envTest bool) bool {
	if envTest {
		return true
	}
	for _, arg := range args {
		switch arg {
		case "--help", "-h", "--version":
			return true
		}
		if scriptedCommands[arg] {
			return true
		}
	}
	return false
}
