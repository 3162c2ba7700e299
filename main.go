// Atlasman manages the lifecycle of MongoDB Atlas clusters provisioned
// for hackathon teams.
package main

import (
	"github.com/hackforge/atlasman/cmd"
)

func main() {
	cmd.Run()
}
