// Package main is the entry point for the botctl admin tool.
package main

import (
	"os"

	"github.com/amirenger/My-Final-Telegram-Bot/cmd/botctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
