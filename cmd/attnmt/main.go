package main

import "github.com/unixpickle/attnmt/cmd/attnmt/cmd"

func main() {
	cmd.Execute()
}
