package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"

	"github.com/snacksync/snacksync-api/internal/crypto"
)

func main() {
	// Parse command line flags
	jwtSecretBytes := flag.Int("jwt-bytes", 48, "Random bytes for the JWT signing secret")
	flag.Parse()

	encryptionKey, err := crypto.GenerateKey()
	if err != nil {
		log.Fatal("Failed to generate encryption key:", err)
	}

	jwtSecret := make([]byte, *jwtSecretBytes)
	if _, err := rand.Read(jwtSecret); err != nil {
		log.Fatal("Failed to generate JWT secret:", err)
	}

	fmt.Println("✓ Generated fresh secrets!")
	fmt.Println("\nAdd these to your .env file:")
	fmt.Printf("ENCRYPTION_KEY=%s\n", encryptionKey)
	fmt.Printf("JWT_SECRET_KEY=%s\n", base64.StdEncoding.EncodeToString(jwtSecret))
	fmt.Println("\nKeep ENCRYPTION_KEY stable once users exist: rotating it makes")
	fmt.Println("every stored credential undecryptable and forces re-authentication.")
}
