package main

import (
	"github.com/xkilldash9x/luci-doctor/cmd"
)

func main() {
	cmd.Execute()
}
