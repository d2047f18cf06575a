package main

import "github.com/horusauth/horus/cmd"

func main() {
	cmd.Execute()
}
