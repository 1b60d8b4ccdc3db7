package main

import "github.com/pnordq/pnfem/internal/cli"

func main() {
	cli.Execute()
}
