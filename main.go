package main

import "github.com/Sang-it/server-load-simulation/cmd"

func main() {
	cmd.Execute()
}
