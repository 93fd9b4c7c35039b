package main

import "neighbor-aid-backend/cmd"

func main() {
	cmd.Run()
}
