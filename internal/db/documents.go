package db

import (
	"context"
	"fmt"

	"kycflow/internal/model"
	"kycflow/internal/sentinel"
)

func (q *Queries) CreateDocument(ctx context.Context, d model.Document) (model.Document, error) {
	var out model.Document
	var docType string
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO documents (id, type, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, type, location, created_at`,
		d.ID, string(d.Type), d.Location, d.CreatedAt,
	).Scan(&out.ID, &docType, &out.Location, &out.CreatedAt)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to insert document: %w", err)
	}
	out.Type = model.DocumentType(docType)
	return out, nil
}

// GetDocuments returns the documents for ids in the order given
func (q *Queries) GetDocuments(ctx context.Context, ids []string) ([]model.Document, error) {
	if len(ids) == 0 {
		return []model.Document{}, nil
	}

	rows, err := q.Pool.Query(ctx,
		"SELECT id, type, location, created_at FROM documents WHERE id = ANY($1)",
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]model.Document, len(ids))
	for rows.Next() {
		var d model.Document
		var docType string
		if err := rows.Scan(&d.ID, &docType, &d.Location, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Type = model.DocumentType(docType)
		byID[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	documents := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		d, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("document %s: %w", id, sentinel.ErrNotFound)
		}
		documents = append(documents, d)
	}
	return documents, nil
}
