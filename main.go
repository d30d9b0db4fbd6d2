package main

import "github.com/jmehdipour/overdue-notifier/cmd"

func main() {
	cmd.Execute()
}
