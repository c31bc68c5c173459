// Command rtnetctl is the CLI client for the rtnetd daemon's JSON
// introspection endpoints.
package main

import "github.com/seregonwar/rtnetstack/cmd/rtnetctl/commands"

func main() {
	commands.Execute()
}
