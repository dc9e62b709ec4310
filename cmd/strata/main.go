// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/strata/cmd/strata/cmd"
)

func main() {
	cmd.Execute()
}
