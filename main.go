package main

import "salesbot/internal/app"

func main() {
	app.Main()
}
