package main

import (
	"os"

	"github.com/DiyarNzar/Wifi-tester-pro/cmd/wifitester/commands"
)

func main() {
	if err := commands.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
