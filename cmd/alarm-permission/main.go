package main

import "github.com/Soumi0401/SimpleNotification/cmd/alarm-permission/cmd"

func main() {
	cmd.Execute()
}
