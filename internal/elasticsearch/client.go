package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gatewaymon/internal/config"
	"gatewaymon/internal/logger"
	"gatewaymon/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// SnapshotEntry is an indexed health collection cycle.
type SnapshotEntry struct {
	OrganizationID string    `json:"organization_id"`
	Status         string    `json:"status"`
	CPUUsage       float64   `json:"cpu_usage"`
	MemoryUsage    float64   `json:"memory_usage"`
	DiskUsage      float64   `json:"disk_usage"`
	ResponseTime   float64   `json:"response_time"`
	ErrorRate      float64   `json:"error_rate"`
	Throughput     float64   `json:"throughput"`
	Timestamp      time.Time `json:"@timestamp"`
}

// AlertEntry is an indexed raised alert.
type AlertEntry struct {
	OrganizationID string    `json:"organization_id"`
	AlertType      string    `json:"alert_type"`
	Severity       string    `json:"severity"`
	Status         string    `json:"status"`
	Source         string    `json:"source"`
	CurrentValue   float64   `json:"current_value"`
	ThresholdValue float64   `json:"threshold_value"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"@timestamp"`
}

type Client struct {
	es     *elasticsearch.Client
	config config.ElasticsearchConfig
}

// NewClient connects to elasticsearch and verifies the cluster is reachable.
// Returns (nil, nil) when elasticsearch is disabled in configuration.
func NewClient(cfg config.ElasticsearchConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	esConfig := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	}

	es, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned error: %s", res.String())
	}

	client := &Client{
		es:     es,
		config: cfg,
	}

	logger.Info("Elasticsearch client initialized")

	return client, nil
}

// indexName builds a daily-rolling index name for a document kind.
func (c *Client) indexName(kind string) string {
	return fmt.Sprintf("%s-%s-%s", c.config.IndexPrefix, kind, time.Now().Format("2006.01.02"))
}

func (c *Client) index(indexName string, doc interface{}) error {
	if c == nil || c.es == nil {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(context.Background(), c.es)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch indexing error: %s", res.String())
	}

	return nil
}

// IndexSnapshot indexes a health snapshot into the daily snapshots index.
// Satisfies health.Indexer.
func (c *Client) IndexSnapshot(snapshot *models.HealthSnapshot) error {
	if c == nil || c.es == nil {
		return nil
	}

	entry := SnapshotEntry{
		OrganizationID: snapshot.OrganizationID,
		Status:         snapshot.Status,
		CPUUsage:       snapshot.CPUUsage,
		MemoryUsage:    snapshot.MemoryUsage,
		DiskUsage:      snapshot.DiskUsage,
		ResponseTime:   snapshot.ResponseTime,
		ErrorRate:      snapshot.ErrorRate,
		Throughput:     snapshot.Throughput,
		Timestamp:      snapshot.RecordedAt.UTC(),
	}

	return c.index(c.indexName("snapshots"), entry)
}

// IndexAlert indexes a raised or updated alert into the daily alerts index.
func (c *Client) IndexAlert(alert *models.Alert) error {
	if c == nil || c.es == nil {
		return nil
	}

	entry := AlertEntry{
		OrganizationID: alert.OrganizationID,
		AlertType:      alert.AlertType,
		Severity:       alert.Severity,
		Status:         alert.Status,
		Source:         alert.Source,
		CurrentValue:   alert.CurrentValue,
		ThresholdValue: alert.ThresholdValue,
		Message:        alert.Message,
		Timestamp:      time.Now().UTC(),
	}

	return c.index(c.indexName("alerts"), entry)
}

// CreateIndexTemplate installs a template so the daily indices share mappings.
func (c *Client) CreateIndexTemplate() error {
	if c == nil || c.es == nil {
		return nil
	}

	template := map[string]interface{}{
		"index_patterns": []string{c.config.IndexPrefix + "-*"},
		"template": map[string]interface{}{
			"settings": map[string]interface{}{
				"number_of_shards":   1,
				"number_of_replicas": 1,
			},
			"mappings": map[string]interface{}{
				"properties": map[string]interface{}{
					"@timestamp":      map[string]string{"type": "date"},
					"organization_id": map[string]string{"type": "keyword"},
					"status":          map[string]string{"type": "keyword"},
					"severity":        map[string]string{"type": "keyword"},
					"alert_type":      map[string]string{"type": "keyword"},
				},
			},
		},
	}

	body, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("failed to marshal index template: %w", err)
	}

	req := esapi.IndicesPutIndexTemplateRequest{
		Name: c.config.IndexPrefix,
		Body: bytes.NewReader(body),
	}

	res, err := req.Do(context.Background(), c.es)
	if err != nil {
		return fmt.Errorf("failed to create index template: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch template error: %s", res.String())
	}

	return nil
}
