package main

import "github.com/fenilmodi00/lotto-backend/cmd"

func main() {
	cmd.Execute()
}
