package main

import "github.com/KaramelBytes/dagloom-cli/cmd"

func main() {
	cmd.Execute()
}
