package main

import "stir/cmd"

func main() {
	cmd.Execute()
}
