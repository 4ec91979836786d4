package main

import (
	"github.com/joho/godotenv"

	"bjj-tournament/cmd"
)

func main() {
	_ = godotenv.Load()
	cmd.Execute()
}
