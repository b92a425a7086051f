package main

import "github.com/CosmoTheDev/slack-digest/cmd"

func main() {
	cmd.Execute()
}
