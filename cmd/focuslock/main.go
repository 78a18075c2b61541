package main

import "github.com/adibhanna/focuslock/internal/cli"

func main() {
	cli.Execute()
}
