package main

import "github.com/terraconstructs/postboard/cmd/postctl/cmd"

func main() {
	cmd.Execute()
}
