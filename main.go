package main

import (
	"fmt"

	"github.com/mars-protocol/v1-core-sub001/cmd"
)

var (
	version string
	commit  string
)

func main() {
	cmd.Execute(fmt.Sprintf("%s-%s", version, commit))
}
