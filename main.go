package main

import "github/chapool/go-safe/cmd"

func main() {
	cmd.Execute()
}
