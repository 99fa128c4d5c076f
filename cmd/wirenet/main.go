package main

import "github.com/OpenTraceLab/wirenet/cmd/wirenet/cmd"

func main() {
	cmd.Execute()
}
