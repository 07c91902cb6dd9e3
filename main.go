package main

import "giftlist-tools/cmd"

func main() {
	cmd.Execute()
}
