package main

import (
	"log"
	"os"

	_ "time/tzdata"
)

func main() {
	log.SetFlags(0)
	err := rootCmd.Execute()
	closeDependencies()
	if err != nil {
		os.Exit(1)
	}
}
