package vectordb

import "time"

// Document is one chunk of an uploaded file.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata holds structured information about a chunk.
type DocumentMetadata struct {
	Source      string // sanitized filename of the upload
	UploadID    string
	ChunkIndex  int
	LastUpdated time.Time
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// SearchFilter allows narrowing search results by metadata fields.
type SearchFilter struct {
	Source   *string
	UploadID *string
}
