/*
Copyright © 2025 tieubaoca
*/
package main

import (
	"github.com/joho/godotenv"
	"github.com/tieubaoca/docchat-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// .env is optional; secrets may come from the real environment.
	_ = godotenv.Load()
}
