package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// .env is a development convenience; production sets real env vars.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		exitOnError(err)
	}
}
