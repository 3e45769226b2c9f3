package main

import (
	"github.com/brokerdesk/bd-wap/cmd"
)

func main() {
	cmd.Execute()
}
