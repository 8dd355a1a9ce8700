package main

import (
	"os"
	"syscall"
)

func helper() {
	os.Exit(3)
}

func main() {
	defer helper()
	os.Exit(1)      // want "avoid using os.Exit in main.main"
	syscall.Exit(2) // want "avoid using syscall.Exit in main.main"
}
