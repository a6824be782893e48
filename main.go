package main

import "github.com/yeremiapane/restaurant-dashboard/cmd"

func main() {
	cmd.Execute()
}
