package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/soyeahso/prelims-tutor/internal/cli"
	"github.com/tillberg/autorestart"
)

func main() {
	if !production() {
		go autorestart.RestartOnChange()
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// production mirrors the env check in config so the watcher never runs on
// a hosted deployment.
func production() bool {
	for _, k := range []string{"TUTOR_ENV", "NODE_ENV"} {
		if v := os.Getenv(k); v != "" {
			return strings.EqualFold(v, "production")
		}
	}
	return false
}
