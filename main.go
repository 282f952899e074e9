package main

import "github.com/fintrack/fintrack/cmd"

func main() {
	cmd.Execute()
}
