package main

import "admission-analytics/cmd/server/cmd"

func main() {
	cmd.Execute()
}
