// Package model holds the data types shared across the retrieval pipeline:
// vectors, documents, task types, and the cache-key convention that ties
// L1 and L2 together.
package model

import "fmt"

// TaskType is a closed enum of embedding task hints. Two distinct texts
// embedded under different TaskTypes are not comparable by cosine
// similarity — the pipeline always uses RetrievalQuery for reads and
// RetrievalDocument for writes, and that asymmetry must be preserved.
type TaskType int

const (
	TaskUnspecified TaskType = iota
	RetrievalQuery
	RetrievalDocument
	SemanticSimilarity
	Classification
	Clustering
	QuestionAnswering
	FactVerification
)

// String returns the wire representation used by the Gemini embedding API.
func (t TaskType) String() string {
	switch t {
	case RetrievalQuery:
		return "RETRIEVAL_QUERY"
	case RetrievalDocument:
		return "RETRIEVAL_DOCUMENT"
	case SemanticSimilarity:
		return "SEMANTIC_SIMILARITY"
	case Classification:
		return "CLASSIFICATION"
	case Clustering:
		return "CLUSTERING"
	case QuestionAnswering:
		return "QUESTION_ANSWERING"
	case FactVerification:
		return "FACT_VERIFICATION"
	default:
		return "TASK_TYPE_UNSPECIFIED"
	}
}

// Vector is a fixed-length embedding. Its length must be consistent with
// the dimension D configured for the running instance.
type Vector []float32

// Document is a text string stored alongside a vector.
type Document string

// ResultList is an ordered sequence of documents, length <= the request's limit.
type ResultList []Document

// StoredRow is a persisted (vector, text) pair with a store-assigned id.
type StoredRow struct {
	ID     int64
	Vector Vector
	Text   Document
}

// CacheKey returns the sole identity used for L1/L2 lookup: the query text
// and limit joined verbatim, with no normalization. Two requests with the
// same query text but different limits are distinct cache entries.
func CacheKey(query string, limit int) string {
	return fmt.Sprintf("%s::%d", query, limit)
}
