package main

import "github.com/claude/gymbro/cmd/gymbroctl/commands"

func main() {
	commands.Execute()
}
