package main

import "tinyhttpd/internal/cli"

func main() {
	cli.Execute()
}
