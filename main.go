package main

import "github.com/chxlky/trello-report/cmd"

func main() {
	cmd.Execute()
}
