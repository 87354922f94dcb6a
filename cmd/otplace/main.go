package main

import "github.com/OpenTraceLab/OpenTracePlace/cmd/otplace/cmd"

func main() {
	cmd.Execute()
}
