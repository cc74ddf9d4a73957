package main

import "github.com/ajramos/inboxpilot/internal/cli"

func main() {
	cli.Execute()
}
