package main

import "github.com/plepperguy/pleppervr-updater/cmd/pleppervr-updater/cmd"

func main() {
	cmd.Execute()
}
