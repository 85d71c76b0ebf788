// Package main is the entry point for the todolite CLI.
package main

import "github.com/todolite/todolite/internal/cli"

func main() {
	cli.Execute()
}
