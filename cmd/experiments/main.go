package main

import "github.com/AFA55/pontifex-industries-sub002/internal/cli"

func main() {
	cli.Execute()
}
