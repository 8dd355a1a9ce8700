// Command filesmanager runs the files manager HTTP service.
package main

import (
	"log"

	"github.com/patric-chuzhbe/filesmanager/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		log.Fatal(err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		log.Println(err)
	}
}
