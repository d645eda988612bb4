package main

import "github.com/autocommit/autocommit/cmd/autocommit/cmd"

func main() {
	cmd.Execute()
}
