package neo4jstore

import (
	"context"
	"errors"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
	"github.com/kirillkom/graphrag-compare/internal/infrastructure/resilience"
)

func classifyNeo4jError(err error) resilience.ErrorClassification {
	if err == nil || errors.Is(err, context.Canceled) {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.DeadlineExceeded) || neo4j.IsConnectivityError(err) || neo4j.IsRetryable(err) {
		return resilience.ErrorClassification{Transient: true, RecordFailure: true}
	}
	var dbErr *neo4j.Neo4jError
	if errors.As(err, &dbErr) && strings.HasPrefix(dbErr.Code, "Neo.ClientError.") {
		return resilience.ErrorClassification{}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}

// mapQueryError tags a failed query with kind, or with ErrIndexUnavailable
// when the similarity index does not exist.
func mapQueryError(operation string, err error, kind error) error {
	switch {
	case isMissingIndex(err):
		return domain.WrapError(domain.ErrIndexUnavailable, operation, err)
	case classifyNeo4jError(err).Transient:
		return domain.WrapError(kind, operation, domain.WrapError(domain.ErrTemporary, "neo4j", err))
	default:
		return domain.WrapError(kind, operation, err)
	}
}

func isMissingIndex(err error) bool {
	var dbErr *neo4j.Neo4jError
	if !errors.As(err, &dbErr) {
		return false
	}
	if strings.Contains(dbErr.Code, "IndexNotFound") {
		return true
	}
	return strings.HasSuffix(dbErr.Code, "Procedure.ProcedureCallFailed") &&
		strings.Contains(strings.ToLower(dbErr.Msg), "index")
}

func isAlreadyExists(err error) bool {
	var dbErr *neo4j.Neo4jError
	if errors.As(err, &dbErr) {
		return strings.Contains(dbErr.Code, "AlreadyExists")
	}
	return false
}
