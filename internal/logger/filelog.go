package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var logFileMutex sync.Mutex

// SampleLogEntry is one health-collection cycle written to the audit log.
type SampleLogEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	OrganizationID string    `json:"organization_id"`
	Status         string    `json:"status"`
	CPUUsage       float64   `json:"cpu_usage"`
	MemoryUsage    float64   `json:"memory_usage"`
	DiskUsage      float64   `json:"disk_usage"`
	ResponseTime   float64   `json:"response_time"`
	ErrorRate      float64   `json:"error_rate"`
	Throughput     float64   `json:"throughput"`
	Message        string    `json:"message,omitempty"`
}

// InitSampleLog creates the directory for the sample audit log.
func InitSampleLog(logDir string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// WriteSampleLog appends a collection cycle to the daily JSON-lines file.
func WriteSampleLog(logDir string, entry *SampleLogEntry) error {
	logFileMutex.Lock()
	defer logFileMutex.Unlock()

	date := time.Now().Format("2006-01-02")
	logFilePath := filepath.Join(logDir, fmt.Sprintf("samples-%s.jsonl", date))

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}

	return nil
}

// SampleQueryRequest filters the sample audit log.
type SampleQueryRequest struct {
	OrganizationID string     `json:"organization_id,omitempty"`
	Status         string     `json:"status,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Limit          int        `json:"limit,omitempty"`
	Offset         int        `json:"offset,omitempty"`
}

// SampleQueryResult is a page of matched entries, newest first.
type SampleQueryResult struct {
	Total int               `json:"total"`
	Logs  []*SampleLogEntry `json:"logs"`
}

// QuerySampleLogs reads daily log files in the requested range and filters them.
func QuerySampleLogs(logDir string, req *SampleQueryRequest) (*SampleQueryResult, error) {
	result := &SampleQueryResult{
		Logs: make([]*SampleLogEntry, 0),
	}

	var startDate, endDate time.Time
	if req.StartTime != nil {
		startDate = *req.StartTime
	} else {
		startDate = time.Now().AddDate(0, 0, -7)
	}
	if req.EndTime != nil {
		endDate = *req.EndTime
	} else {
		endDate = time.Now()
	}

	matched := make([]*SampleLogEntry, 0)
	for d := startDate; d.Before(endDate.AddDate(0, 0, 1)); d = d.AddDate(0, 0, 1) {
		logFilePath := filepath.Join(logDir, fmt.Sprintf("samples-%s.jsonl", d.Format("2006-01-02")))
		if _, err := os.Stat(logFilePath); os.IsNotExist(err) {
			continue
		}

		entries, err := readSampleLogFile(logFilePath)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if !matchesSampleQuery(entry, req) {
				continue
			}
			matched = append(matched, entry)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	result.Total = len(matched)
	if req.Limit <= 0 {
		req.Limit = 100
	}

	start := req.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + req.Limit
	if end > len(matched) {
		end = len(matched)
	}
	if start < end {
		result.Logs = matched[start:end]
	}

	return result, nil
}

func readSampleLogFile(logFilePath string) ([]*SampleLogEntry, error) {
	file, err := os.Open(logFilePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	entries := make([]*SampleLogEntry, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var entry SampleLogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}

	return entries, scanner.Err()
}

func matchesSampleQuery(entry *SampleLogEntry, req *SampleQueryRequest) bool {
	if req.OrganizationID != "" && entry.OrganizationID != req.OrganizationID {
		return false
	}
	if req.Status != "" && entry.Status != req.Status {
		return false
	}
	if req.StartTime != nil && entry.Timestamp.Before(*req.StartTime) {
		return false
	}
	if req.EndTime != nil && entry.Timestamp.After(*req.EndTime) {
		return false
	}
	return true
}
