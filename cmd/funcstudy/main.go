// Command funcstudy studies real functions of x from the terminal, a
// terminal UI or a small web server.
//
//	funcstudy study "x**3 - 3*x"
//	funcstudy tui
//	funcstudy serve --addr :8080
package main

import (
	"os"

	"github.com/njchilds90/funcstudy/cli"
)

func main() {
	os.Exit(cli.Execute())
}
