// Command arqsim simulates ARQ protocols and prints the event trace.
package main

import "github.com/sarchlab/arqsim/arqsim/cmd"

func main() {
	cmd.Execute()
}
