// Package search maintains a best-effort full-text index of
// applications. Index writes mirror the primary store and are never
// allowed to fail a mutation.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jobtrack-backend/internal/common/logger"
	"jobtrack-backend/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrIndexWriteFailed  = errors.New("SEARCH_INDEX_FAILED")
)

type Index struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndex(client *elasticsearch.Client, index string, log logger.Logger) *Index {
	return &Index{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search"}),
	}
}

type document struct {
	UserID  string `json:"user_id"`
	Company string `json:"company"`
	Role    string `json:"role"`
	Source  string `json:"source"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

// IndexApplication upserts the application's searchable fields under
// its id.
func (i *Index) IndexApplication(ctx context.Context, app *models.Application) error {
	doc := document{
		UserID:  app.UserID,
		Company: app.Company,
		Role:    app.Role,
		Source:  app.Source,
		Status:  app.Status,
		Notes:   app.Notes,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal document: %v", ErrIndexWriteFailed, err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(app.ID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexWriteFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexWriteFailed, res.Status())
	}
	return nil
}

// DeleteApplication removes the application from the index. A missing
// document is not an error.
func (i *Index) DeleteApplication(ctx context.Context, appID string) error {
	res, err := i.client.Delete(
		i.index,
		appID,
		i.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexWriteFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("%w: %s", ErrIndexWriteFailed, res.Status())
	}
	return nil
}

// Search returns ids of the user's applications matching the free-text
// query over company, role and notes, best match first.
func (i *Index) Search(ctx context.Context, userID, query string) ([]string, error) {
	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{"user_id": userID},
					},
				},
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":  query,
							"fields": []string{"company^2", "role", "notes"},
						},
					},
				},
			},
		},
	}

	body, err := json.Marshal(esQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal query: %v", ErrSearchQueryFailed, err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchQueryFailed, err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
