package main

import "github.com/Soumi0401/SimpleNotification/cmd/alarm-channel/cmd"

func main() {
	cmd.Execute()
}
