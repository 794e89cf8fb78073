package main

import (
	"ProposalScanner/internal/cli"
)

func main() {
	cli.Execute()
}
