package main

import "photo-backend/internal/app"

func main() {
	app.Run()
}
