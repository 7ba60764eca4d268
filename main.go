package main

import "visit-tracker/cmd"

func main() {
	cmd.Execute()
}
