package main

import "github.com/tosih/mrdf-tool/cmd"

func main() {
	cmd.Execute()
}
