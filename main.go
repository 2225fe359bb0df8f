package main

import "github.com/notargets/oilspill/cmd"

func main() {
	cmd.Execute()
}
