package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/graft/config"
)

func main() {
	schemaBytes, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	// Write the schema where the schema package embeds it.
	outputPath := filepath.Join("schema", "graft.embedded.schema.json")
	if err := os.WriteFile(outputPath, append(schemaBytes, '\n'), 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated metadata schema at %s", outputPath)
}
