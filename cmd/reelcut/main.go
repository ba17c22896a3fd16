package main

import "github.com/forPelevin/reelcut/internal/cli"

func main() { cli.Main() }
