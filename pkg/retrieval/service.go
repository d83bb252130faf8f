package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/graph"
	"github.com/metaquery-ai/metaquery-engine/pkg/llm"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

// MetadataService runs the full concept-first retrieval pipeline for one
// question. Callers see either a populated RetrievalResult (possibly with
// empty tables; emptiness is not an error) or a failure with a descriptive
// message.
type MetadataService interface {
	Retrieve(ctx context.Context, question string) (*models.RetrievalResult, error)
}

type metadataService struct {
	store       graph.Store
	selector    *ConceptSelector
	narrower    *SchemaNarrower
	synthesizer *QuerySynthesizer
	executor    *Executor
	logger      *zap.Logger
}

// NewMetadataService creates a MetadataService.
func NewMetadataService(store graph.Store, client llm.Client, logger *zap.Logger) MetadataService {
	return &metadataService{
		store:       store,
		selector:    NewConceptSelector(client, logger),
		narrower:    NewSchemaNarrower(store, logger),
		synthesizer: NewQuerySynthesizer(client, logger),
		executor:    NewExecutor(store, logger),
		logger:      logger.Named("metadata-service"),
	}
}

var _ MetadataService = (*metadataService)(nil)

func (s *metadataService) Retrieve(ctx context.Context, question string) (*models.RetrievalResult, error) {
	s.logger.Info("retrieving metadata", zap.String("question", question))

	catalog, err := s.store.Concepts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load concept catalog: %w", err)
	}

	concepts := s.selector.Select(ctx, question, catalog)
	if len(concepts) > 0 {
		names := make([]string, 0, len(concepts))
		for _, c := range concepts {
			names = append(names, c.Name)
		}
		s.logger.Info("identified relevant concepts", zap.Strings("concepts", names))
	}

	candidates, err := s.narrower.Narrow(ctx, concepts)
	if err != nil {
		return nil, err
	}

	query, err := s.synthesizer.Synthesize(ctx, question, FormatSchemaHint(candidates), concepts)
	if err != nil {
		return nil, err
	}

	result, err := s.executor.Execute(ctx, query)
	if err != nil {
		return nil, err
	}

	result.Concepts = concepts
	if len(result.Joins) > 0 {
		result.Joins = PrioritizeJoins(result.Joins, question)
	}

	return result, nil
}
