package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"pricepeek/cmd"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cmd.Execute()
}
