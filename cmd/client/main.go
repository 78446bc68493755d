package main

import "steno/cmd/client/cmd"

func main() {
	cmd.Execute()
}
