package main

import "github.com/filterwatch/filterwatch-agent/cmd"

func main() {
	cmd.Execute()
}
