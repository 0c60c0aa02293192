package main

import (
	"os"

	"github.com/mohsalah/askdoc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
