// The main package for the wikipedizer executable.
package main

import (
	"github.com/ProgrammingPerson/wikipedizer-9000/cmd"
)

func main() {
	cmd.Execute()
}
