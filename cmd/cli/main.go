package main

import "popcornhour/cmd/cli/command"

func main() {
	command.Execute()
}
