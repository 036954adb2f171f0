// Command speechctl runs the speech post-processing pipeline locally or
// against a running service.
package main

import (
	"os"

	"github.com/wanghonghua666/AI-CALENDAR/cmd/speechctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
