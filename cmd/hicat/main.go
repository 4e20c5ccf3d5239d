package main

import (
	"hicat/internal/app"
	"hicat/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
