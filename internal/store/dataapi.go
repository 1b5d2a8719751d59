package store

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// pingUserID is looked up by Ping; it is never written.
const pingUserID = "__healthcheck__"

// DataAPIStore reaches MongoDB Atlas through its HTTPS Data API, for hosts
// where the driver's TLS connection cannot be established.
type DataAPIStore struct {
	http *resty.Client
	cfg  config.DataAPIConfig
}

// dataAPIRequest is the body shared by all Data API actions.
type dataAPIRequest struct {
	DataSource  string         `json:"dataSource"`
	Database    string         `json:"database"`
	Collection  string         `json:"collection"`
	Filter      map[string]any `json:"filter,omitempty"`
	Replacement map[string]any `json:"replacement,omitempty"`
	Upsert      bool           `json:"upsert,omitempty"`
}

// dataAPIResponse covers the fields of findOne, replaceOne and deleteOne replies.
type dataAPIResponse struct {
	Document      model.Snapshot `json:"document"`
	MatchedCount  int            `json:"matchedCount"`
	ModifiedCount int            `json:"modifiedCount"`
	UpsertedID    any            `json:"upsertedId"`
	DeletedCount  int            `json:"deletedCount"`
	Error         string         `json:"error"`
	ErrorCode     string         `json:"error_code"`
}

// NewDataAPIStore creates a store for the Data API endpoint at cfg.URL
// (e.g. https://data.mongodb-api.com/app/<app-id>/endpoint/data/v1).
func NewDataAPIStore(cfg config.DataAPIConfig) *DataAPIStore {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &DataAPIStore{http: client, cfg: cfg}
}

// Name implements Store.
func (s *DataAPIStore) Name() string {
	return config.BackendMongoDBHTTP
}

// Load implements Store.
func (s *DataAPIStore) Load(ctx context.Context, userID string) (model.Snapshot, error) {
	out, err := s.action(ctx, "findOne", s.request(userID))
	if err != nil {
		return nil, err
	}
	return stripInternal(out.Document), nil
}

// Save implements Store.
func (s *DataAPIStore) Save(ctx context.Context, userID string, snapshot model.Snapshot) error {
	doc := snapshot.Clone()
	delete(doc, fieldMongoID)
	doc[fieldUserID] = userID

	req := s.request(userID)
	req.Replacement = doc
	req.Upsert = true

	_, err := s.action(ctx, "replaceOne", req)
	return err
}

// Delete implements Store.
func (s *DataAPIStore) Delete(ctx context.Context, userID string) error {
	_, err := s.action(ctx, "deleteOne", s.request(userID))
	return err
}

// Ping implements Store with a findOne round-trip.
func (s *DataAPIStore) Ping(ctx context.Context) error {
	_, err := s.action(ctx, "findOne", s.request(pingUserID))
	return err
}

// Close implements Store.
func (s *DataAPIStore) Close() error {
	return nil
}

func (s *DataAPIStore) request(userID string) dataAPIRequest {
	return dataAPIRequest{
		DataSource: s.cfg.DataSource,
		Database:   s.cfg.Database,
		Collection: s.cfg.Collection,
		Filter:     map[string]any{fieldUserID: userID},
	}
}

// action posts to {url}/action/{name}.
func (s *DataAPIStore) action(ctx context.Context, name string, body dataAPIRequest) (dataAPIResponse, error) {
	var out dataAPIResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("action", name).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/action/{action}")
	if err != nil {
		return out, fmt.Errorf("data api %s failed: %w", name, err)
	}
	if out.Error != "" {
		return out, fmt.Errorf("data api %s failed: %s", name, out.Error)
	}
	if resp.IsError() {
		return out, fmt.Errorf("data api %s failed: status %d", name, resp.StatusCode())
	}
	return out, nil
}
