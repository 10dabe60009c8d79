package main

import (
	"log"

	tool "github.com/sandeepkv93/vibecraft-auth-service/internal/tools/seed"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
