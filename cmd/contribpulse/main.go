package main

import "github.com/xR0am/contribpulse/cmd"

func main() {
	cmd.Execute()
}
