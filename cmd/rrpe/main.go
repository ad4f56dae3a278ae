package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"rrpe/internal/cli"
)

func main() {
	// Optional .env for RRPE_SALT_KEY and friends; absence is fine.
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rrpe:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
