package main

import "github.com/deftunes/goextract/cmd/goextract/cmd"

func main() {
	cmd.Execute()
}
