package main

import "github.com/scenecraft/scenecraft/cmd"

func main() {
	cmd.Execute()
}
