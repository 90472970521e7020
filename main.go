package main

import "github.com/tanq16/getter/cmd"

func main() {
	cmd.Execute()
}
