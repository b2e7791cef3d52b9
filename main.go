package main

import "github.com/notargets/meshdecomp/cmd"

func main() {
	cmd.Execute()
}
