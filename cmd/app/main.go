package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("EVAMED", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("EVAMED API (v%s)\n\n", version)
}
