package main

import "immersionhub/cmd/cli/command"

func main() {
	command.Execute()
}
