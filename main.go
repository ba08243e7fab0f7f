package main

import (
	"log"

	"github.com/thiagokokada/git-age/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("git-age: %v", err)
	}
}
