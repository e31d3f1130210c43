package main

import "github.com/mlorentedev/productai/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
