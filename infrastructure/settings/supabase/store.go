// ABOUTME: Settings store over the hosted database REST API (PostgREST)
// ABOUTME: Reads and upserts rows of the generic key/value settings table

package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/errors"
	"bluehand-admin-api/core/interfaces"

	"github.com/tidwall/gjson"
)

const (
	// DefaultTable is the settings table used by the admin console
	DefaultTable = "site_settings"

	apiName          = "supabase"
	maxResponseBytes = 1 << 20
)

// Config configures the store
type Config struct {
	ProjectURL string
	APIKey     string
	Table      string
}

// Store implements interfaces.SettingsStore
type Store struct {
	http   interfaces.HTTPClient
	prefix string
	table  string
	apiKey string
	now    func() time.Time
}

// New creates a settings store
func New(httpClient interfaces.HTTPClient, cfg Config) (*Store, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("project URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}

	return &Store{
		http:   httpClient,
		prefix: strings.TrimRight(cfg.ProjectURL, "/") + "/rest/v1/" + url.PathEscape(cfg.Table),
		table:  cfg.Table,
		apiKey: cfg.APIKey,
		now:    time.Now,
	}, nil
}

// Get returns the record stored under key, or nil when the row is absent
func (s *Store) Get(ctx context.Context, key string) (*domain.SettingRecord, error) {
	query := url.Values{}
	query.Set("key", "eq."+key)
	query.Set("select", "key,value,updated_at")

	resp, err := s.http.Get(ctx, s.prefix+"?"+query.Encode(), s.headers(nil))
	if err != nil {
		return nil, &errors.ExternalAPIError{Message: "settings request failed: " + err.Error(), API: apiName}
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	rows := gjson.ParseBytes(body)
	if !rows.IsArray() || len(rows.Array()) == 0 {
		return nil, nil
	}

	row := rows.Array()[0]
	record := &domain.SettingRecord{
		Key:   row.Get("key").String(),
		Value: rawValue(row.Get("value")),
	}
	if ts := row.Get("updated_at"); ts.Exists() {
		if t, err := time.Parse(time.RFC3339Nano, ts.String()); err == nil {
			record.UpdatedAt = t
		}
	}
	return record, nil
}

// Put upserts the record keyed by record.Key
func (s *Store) Put(ctx context.Context, record *domain.SettingRecord) error {
	if record == nil || record.Key == "" {
		return &errors.ValidationError{Field: "key", Message: "setting key is required"}
	}

	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now().UTC()
	}

	payload, err := json.Marshal(map[string]interface{}{
		"key":        record.Key,
		"value":      record.Value,
		"updated_at": updatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return errors.WrapError(err, "failed to encode setting")
	}

	resp, err := s.http.Post(ctx, s.prefix+"?on_conflict=key", bytes.NewReader(payload), s.headers(map[string]string{
		"Prefer": "resolution=merge-duplicates,return=minimal",
	}))
	if err != nil {
		return &errors.ExternalAPIError{Message: "settings upsert failed: " + err.Error(), API: apiName}
	}
	_, err = readBody(resp)
	return err
}

func (s *Store) headers(extra map[string]string) map[string]string {
	h := map[string]string{
		"Accept":        "application/json",
		"apikey":        s.apiKey,
		"Authorization": "Bearer " + s.apiKey,
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

func readBody(resp interfaces.Response) ([]byte, error) {
	body := resp.Body()
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxResponseBytes))
	if err != nil {
		return nil, errors.WrapError(err, "failed to read settings response")
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		message := gjson.GetBytes(data, "message").String()
		if message == "" {
			message = strings.TrimSpace(string(data))
		}
		return nil, &errors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			Message:    message,
			API:        apiName,
			Details:    string(data),
		}
	}
	return data, nil
}

// rawValue returns the JSON value of a settings column. Older rows store the
// object as a JSON-encoded string; those are unwrapped.
func rawValue(v gjson.Result) json.RawMessage {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if v.Type == gjson.String {
		if inner := v.String(); gjson.Valid(inner) {
			return json.RawMessage(inner)
		}
	}
	return json.RawMessage(v.Raw)
}
