// This program drives the miner: it mines headless or talks to a running
// miner service.
package main

import "github.com/ardanlabs/simpleminer/app/tooling/minerctl/cmd"

func main() {
	cmd.Execute()
}
