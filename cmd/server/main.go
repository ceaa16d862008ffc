package main

import "opsboard/internal/app/server"

func main() {
	server.Run()
}
