// load-catalog loads the metadata knowledge graph from catalog files.
//
// The catalog has three layers: the physical schema (required), a business
// context enrichment file, and a concept ontology file. Loading is
// idempotent; re-run after editing any layer.
//
// Usage: go run ./scripts/load-catalog -schema schema.yaml [-enrichment enrichment.yaml] [-ontology ontology.yaml]
//
// Graph connection: uses the standard NEO4J_* environment variables.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/metaquery-ai/metaquery-engine/pkg/catalog"
	"github.com/metaquery-ai/metaquery-engine/pkg/config"
	"github.com/metaquery-ai/metaquery-engine/pkg/graph"
	"github.com/metaquery-ai/metaquery-engine/pkg/logging"
)

func main() {
	schemaPath := flag.String("schema", "", "path to the physical schema file (required)")
	enrichmentPath := flag.String("enrichment", "", "path to the business context enrichment file")
	ontologyPath := flag.String("ontology", "", "path to the concept ontology file")
	flag.Parse()

	if *schemaPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load("dev")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	merged, err := catalog.Read(*schemaPath, *enrichmentPath, *ontologyPath)
	if err != nil {
		log.Fatalf("Failed to read catalog: %v", err)
	}

	ctx := context.Background()
	client, err := graph.NewClient(&cfg.Graph, logger)
	if err != nil {
		log.Fatalf("Failed to connect to graph store: %v", err)
	}
	defer func() { _ = client.Close(ctx) }()

	if err := catalog.NewLoader(client, logger).Load(ctx, merged); err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	log.Printf("Catalog loaded: %d tables, %d concepts", len(merged.Tables), len(merged.Concepts))
}
