package main

import "bombie/internal/cli"

func main() {
	cli.Execute()
}
