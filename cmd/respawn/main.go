// Command respawn relaunches a command with recognized launcher flags moved
// in front of the program:
//
//	respawn -f --harmony node app.js --harmony
//	# runs: node --harmony app.js
package main

import (
	"os"

	snapio "github.com/dzonerzy/go-respawn/io"
)

func main() {
	a := newApp(snapio.New())
	if err := a.rootCmd().Execute(); err != nil {
		a.log.Error("%v", err)
		_ = a.io.Flush()
		os.Exit(exitCode(err))
	}
	if a.term != nil {
		a.term.Reproduce(a.io.Flush)
	}
}
