package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/transitpulse/transit-assistant-backend/internal/utils"
)

func main() {
	size := flag.Int("bytes", 32, "random bytes per secret")
	flag.Parse()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets(*size)
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("# Add these to your .env file or deployment secrets.")
	fmt.Println("# Keep them out of version control.")
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
}
