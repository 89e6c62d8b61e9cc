package main

import (
	"log"

	"railbook/internal/validation"
)

func main() {
	log.Println("Running reservation data audit")
	validation.RunAudit()
}
