package main

import (
	cmd "github.com/alumnet/semsearch/internal/cli"
)

func main() {
	cmd.Execute()
}
