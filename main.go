package main

import "github.com/Mohsinsiddi/chainsim/cmd"

func main() {
	cmd.Execute()
}
