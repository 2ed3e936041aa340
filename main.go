package main

import "github.com/nextlevelbuilder/stepreplay/cmd"

func main() {
	cmd.Execute()
}
