package main

import "sidecoach/internal/cmd"

func main() {
	cmd.Execute()
}
