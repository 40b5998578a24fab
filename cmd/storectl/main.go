// Package main is the entry point for storectl.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/tendant/simple-storeinfo/cmd/storectl/app"
)

func main() {
	_ = godotenv.Load()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
