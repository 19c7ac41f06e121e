package main

import "github.com/therealutkarshpriyadarshi/y2logs/internal/cmd"

func main() {
	cmd.Execute()
}
