package main

import "github.com/frahmantamala/website-management/cmd"

func main() {
	cmd.Execute()
}
