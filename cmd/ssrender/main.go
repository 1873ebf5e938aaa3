// Command ssrender renders, checks and serves SS templates.
//
//	ssrender render [--data page.yaml] [--arg Key=Value] Template...
//	ssrender check
//	ssrender serve [--port 8080] [--watch]
//
// Settings are read from .ssrender.yaml and SSRENDER_ environment
// variables; see package config.
package main

import (
	"os"

	"github.com/spf13/afero"
)

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		os.Exit(1)
	}
}
