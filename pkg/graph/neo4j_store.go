package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
	"github.com/metaquery-ai/metaquery-engine/pkg/logging"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

const conceptsQuery = `
MATCH (c:Concept)
OPTIONAL MATCH (c)-[:RELATES_TO]->(t:Table)
WITH c, count(t) AS table_count
RETURN c.name AS name,
       c.definition AS description,
       table_count
ORDER BY c.name`

const tablesForConceptsQuery = `
MATCH (c:Concept)-[r:RELATES_TO]->(t:Table)
WHERE c.name IN $concept_names
RETURN DISTINCT t.name AS name,
       t.business_description AS description,
       c.name AS concept,
       r.confidence AS confidence
ORDER BY
    CASE r.confidence
        WHEN 'high' THEN 1
        WHEN 'medium' THEN 2
        ELSE 3
    END,
    c.name
LIMIT 60`

const allTablesQuery = `
MATCH (t:Table)
OPTIONAL MATCH (c:Concept)-[:RELATES_TO]->(t)
RETURN t.name AS name,
       t.business_description AS description,
       c.name AS concept,
       null AS confidence
LIMIT 60`

// neoStore implements Store against a live Neo4j catalog.
type neoStore struct {
	client *Client
	logger *zap.Logger
}

// NewStore creates a Store backed by the given graph client.
func NewStore(client *Client, logger *zap.Logger) Store {
	return &neoStore{
		client: client,
		logger: logger.Named("graph-store"),
	}
}

var _ Store = (*neoStore)(nil)

func (s *neoStore) session(ctx context.Context) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.client.Database,
	})
}

func (s *neoStore) Concepts(ctx context.Context) ([]models.Concept, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, conceptsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}

	var concepts []models.Concept
	for result.Next(ctx) {
		record := result.Record()
		concepts = append(concepts, models.Concept{
			Name:              recordString(record, "name"),
			Description:       recordString(record, "description"),
			RelatedTableCount: int(recordInt(record, "table_count")),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}

	return concepts, nil
}

func (s *neoStore) TablesForConcepts(ctx context.Context, conceptNames []string) ([]models.CandidateTable, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, tablesForConceptsQuery, map[string]any{
		"concept_names": conceptNames,
	})
	if err != nil {
		return nil, fmt.Errorf("tables for concepts: %w", err)
	}
	return collectCandidates(ctx, result)
}

func (s *neoStore) AllTables(ctx context.Context) ([]models.CandidateTable, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, allTablesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("all tables: %w", err)
	}
	return collectCandidates(ctx, result)
}

func (s *neoStore) Run(ctx context.Context, query string) ([]MetadataRow, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	s.logger.Debug("running metadata query", zap.String("query", logging.SanitizeQuery(query)))

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGraphQuery, err)
	}

	var rows []MetadataRow
	for result.Next(ctx) {
		record := result.Record()
		rows = append(rows, MetadataRow{
			TableName:        recordString(record, "table_name"),
			TableType:        recordString(record, "table_type"),
			TableDescription: recordString(record, "table_description"),
			ColumnsList:      recordList(record, "columns_list"),
			JoinsList:        recordJoins(record, "joins_list"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGraphQuery, err)
	}

	return rows, nil
}

func collectCandidates(ctx context.Context, result neo4j.ResultWithContext) ([]models.CandidateTable, error) {
	var candidates []models.CandidateTable
	for result.Next(ctx) {
		record := result.Record()
		candidates = append(candidates, models.CandidateTable{
			Name:        recordString(record, "name"),
			Description: recordString(record, "description"),
			ConceptName: recordString(record, "concept"),
			Confidence:  recordString(record, "confidence"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("collect candidate tables: %w", err)
	}
	return candidates, nil
}

func recordString(record *db.Record, key string) string {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return ""
	}
	s, _ := value.(string)
	return s
}

func recordInt(record *db.Record, key string) int64 {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return 0
	}
	n, _ := value.(int64)
	return n
}

func recordList(record *db.Record, key string) []any {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return nil
	}
	list, _ := value.([]any)
	return list
}

func recordJoins(record *db.Record, key string) []JoinDescriptor {
	raw := recordList(record, key)
	if len(raw) == 0 {
		return nil
	}

	joins := make([]JoinDescriptor, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok || m == nil {
			continue
		}
		toTable, _ := m["to_table"].(string)
		relType, _ := m["relationship_type"].(string)
		joins = append(joins, JoinDescriptor{
			ToTable:          toTable,
			ViaField:         m["via_field"],
			RelationshipType: relType,
		})
	}
	return joins
}
