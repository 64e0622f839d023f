package main

import "github.com/davidorman/scoremend/cmd"

func main() {
	cmd.Execute()
}
