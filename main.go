// Package main is the entry point for the nflkeys CLI tool, which ingests
// NFL play-by-play data and computes five-keys playoff win predictions.
package main

import "github.com/dmorales/go-nfl-keys/cmd"

func main() {
	cmd.Execute()
}
