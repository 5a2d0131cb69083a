// The main package for the qrzgw executable.
package main

import (
	"github.com/JakeFAU/qrz-gateway/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
