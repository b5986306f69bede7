// Package main is the entry point for the pydock CLI.
package main

import "pydock.dev/pkg/pydock/cmd"

func main() {
	cmd.Execute()
}
