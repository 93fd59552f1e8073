package main

import "github.com/theirongolddev/reefboard/cmd"

func main() {
	cmd.Execute()
}
