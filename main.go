// The main package for the douscan executable.
package main

import (
	"github.com/douscan/douscan/cmd"
)

func main() {
	cmd.Execute()
}
