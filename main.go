package main

import "github.com/vterm/vconsole/cmd"

func main() {
	cmd.Execute()
}
