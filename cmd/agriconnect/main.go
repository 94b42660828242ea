package main

import "github.com/Mohanapavani03/agriconnect/internal/cli"

func main() {
	cli.Execute()
}
