package main

import "github.com/emrgen/docrepo/cmd"

func main() {
	cmd.Execute()
}
