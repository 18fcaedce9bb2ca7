package main

import "github.com/Soumi0401/SimpleNotification/cmd/alarm-bridge-server/cmd"

func main() {
	cmd.Execute()
}
