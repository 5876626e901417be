package main

import "github.com/twiced-technology-gmbh/todowatch/cmd"

func main() {
	cmd.Execute()
}
