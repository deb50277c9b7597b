package main

import "github.com/QuakeRider/Teleseismic-Download-GUI/internal/cli"

func main() {
	cli.Execute()
}
