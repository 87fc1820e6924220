package main

import (
	"github.com/makifarslan/Mini-Farm/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
