package main

import "github.com/mcoot/dicearena-go/internal/cli"

func main() {
	cli.Execute()
}
