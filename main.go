// inbox-agent answers natural-language questions about a Gmail inbox through
// an LLM-driven tool-calling agent.
package main

import "github.com/hal9000y/inbox-agent/cmd"

func main() {
	cmd.Execute()
}
