package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/greenhaven/internal/models"
)

// NewClient connects to Elasticsearch and checks the cluster answers.
func NewClient(ctx context.Context, url, user, password string) (*elasticsearch.Client, error) {
	if url == "" {
		return nil, errors.New("es: empty url")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}
	return client, nil
}

type OrderIndex struct {
	Client *elasticsearch.Client
	Index  string
}

func (ix *OrderIndex) IndexOrder(ctx context.Context, o *models.Order) error {
	body, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("es: marshal order: %w", err)
	}

	res, err := ix.Client.Index(
		ix.Index,
		bytes.NewReader(body),
		ix.Client.Index.WithDocumentID(o.ID),
		ix.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: index order: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index order: %s", res.Status())
	}
	return nil
}

func (ix *OrderIndex) DeleteOrder(ctx context.Context, id string) error {
	res, err := ix.Client.Delete(ix.Index, id, ix.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete order: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete order: %s", res.Status())
	}
	return nil
}

func (ix *OrderIndex) DeleteAll(ctx context.Context) error {
	res, err := ix.Client.DeleteByQuery(
		[]string{ix.Index},
		strings.NewReader(`{"query":{"match_all":{}}}`),
		ix.Client.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete all orders: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete all orders: %s", res.Status())
	}
	return nil
}

func (ix *OrderIndex) SearchOrders(ctx context.Context, query string, from, size int) (int64, []models.Order, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"email^2", "items.name", "status", "shippingAddress"},
				"fuzziness": "AUTO",
			},
		},
		"sort": []any{map[string]any{"orderDate": map[string]any{"order": "desc"}}},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := ix.Client.Search(
		ix.Client.Search.WithContext(ctx),
		ix.Client.Search.WithIndex(ix.Index),
		ix.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("es: search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Order `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	orders := make([]models.Order, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		orders[i] = hit.Source
	}
	return r.Hits.Total.Value, orders, nil
}
