// Command schema regenerates the JSON schema embedded into pkg/config.
// Run via go:generate from the config package.
package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/umputun/newspost/pkg/config"
)

func main() {
	out := "schema.json"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	schema := jsonschema.Reflect(&config.Config{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("can't marshal schema: %v", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(out, data, 0o600); err != nil {
		log.Fatalf("can't write %s: %v", out, err)
	}
	log.Printf("schema written to %s", out)
}
