package main

import (
	"github.com/graftlab/survbench/internal/cli"
)

var (
	version = "0.3.0"
)

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
