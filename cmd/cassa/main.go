package main

import "cassa/internal/cli"

func main() {
	cli.Execute()
}
