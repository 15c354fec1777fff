package main

import "admission-analytics/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
