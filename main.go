package main

import "github.com/ctm/moves-still-count/cmd"

func main() {
	cmd.Execute()
}
