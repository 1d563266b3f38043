package main

import "github.com/eugeniobenito/Triathlon-Updates/internal/cli"

func main() {
	cli.Execute()
}
