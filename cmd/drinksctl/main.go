package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/platinummonkey/coffeeshop/pkg/cli"
)

func main() {
	// credentials may live in a local .env next to the server's
	_ = godotenv.Load()

	rootCmd := cli.NewRootCommand(os.Stdout)
	if err := rootCmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
