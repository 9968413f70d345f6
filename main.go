// Minimal entry point that delegates CLI handling to the Cobra root command
// in cmd/root.go.
package main

import "snaplb/cmd"

func main() {
	cmd.Execute()
}
