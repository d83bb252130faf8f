package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Read builds a merged Catalog from up to three files. The schema file is
// required; enrichment and ontology paths may be empty. Files ending in
// .json are parsed as JSON, everything else as YAML.
func Read(schemaPath, enrichmentPath, ontologyPath string) (*Catalog, error) {
	var catalog Catalog
	if err := readInto(schemaPath, &catalog); err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	for i := range catalog.Tables {
		if catalog.Tables[i].Kind == "" {
			catalog.Tables[i].Kind = "table"
		}
	}

	if enrichmentPath != "" {
		var enrichment Enrichment
		if err := readInto(enrichmentPath, &enrichment); err != nil {
			return nil, fmt.Errorf("read enrichment file: %w", err)
		}
		ApplyEnrichment(&catalog, &enrichment)
	}

	if ontologyPath != "" {
		var ontology Ontology
		if err := readInto(ontologyPath, &ontology); err != nil {
			return nil, fmt.Errorf("read ontology file: %w", err)
		}
		catalog.Concepts = ontology.Concepts
	}

	return &catalog, nil
}

func readInto(path string, out any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Unmarshal(payload, out)
	}
	return yaml.Unmarshal(payload, out)
}

// ApplyEnrichment merges business context onto schema tables in place.
// Matching is by table and column name; enrichment entries for unknown
// tables or columns are ignored, and empty enrichment fields never clear
// values already present in the schema.
func ApplyEnrichment(catalog *Catalog, enrichment *Enrichment) {
	tableIndex := make(map[string]*TableDef, len(catalog.Tables))
	for i := range catalog.Tables {
		tableIndex[catalog.Tables[i].Name] = &catalog.Tables[i]
	}

	for _, te := range enrichment.Tables {
		table, ok := tableIndex[te.Name]
		if !ok {
			continue
		}
		if te.Description != "" {
			table.Description = te.Description
		}

		columnIndex := make(map[string]*ColumnDef, len(table.Columns))
		for i := range table.Columns {
			columnIndex[table.Columns[i].Name] = &table.Columns[i]
		}

		for _, ce := range te.Columns {
			column, ok := columnIndex[ce.Name]
			if !ok {
				continue
			}
			applyColumnEnrichment(column, ce)
		}
	}
}

func applyColumnEnrichment(column *ColumnDef, ce ColumnEnrichment) {
	if ce.SemanticType != "" {
		column.SemanticType = ce.SemanticType
	}
	if len(ce.SampleValues) > 0 {
		column.SampleValues = ce.SampleValues
	}
	if ce.BusinessTerm != "" {
		column.BusinessTerm = ce.BusinessTerm
	}
	if ce.BusinessDefinition != "" {
		column.BusinessDefinition = ce.BusinessDefinition
	}
	if ce.UsageNotes != "" {
		column.UsageNotes = ce.UsageNotes
	}
	if ce.DataQualityNote != "" {
		column.DataQualityNote = ce.DataQualityNote
	}
	if ce.Unit != "" {
		column.Unit = ce.Unit
	}
}
