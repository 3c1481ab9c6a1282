// Package nats provides stream configuration for coderef job processing
package nats

import (
	"context"
	"time"
)

// Stream names
const (
	StreamJobs = "CODEREF_JOBS"
)

// Subject patterns for job routing
const (
	// SubjectJobsAll matches all job subjects
	SubjectJobsAll = "jobs.>"

	// Job type subjects
	SubjectJobScan   = "jobs.scan"
	SubjectJobGraph  = "jobs.graph"
	SubjectJobReport = "jobs.report"
)

// Consumer names
const (
	ConsumerScan   = "scan-worker"
	ConsumerGraph  = "graph-worker"
	ConsumerReport = "report-worker"
)

// DefaultStreamConfig returns the default stream configuration for jobs
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Name:        StreamJobs,
		Subjects:    []string{SubjectJobsAll},
		MaxMsgs:     100000,
		MaxBytes:    1024 * 1024 * 500, // 500MB
		MaxAge:      7 * 24 * time.Hour,
		Replicas:    1,
		Description: "coderef job processing stream",
	}
}

// SetupStreams creates all required streams and consumers
func (c *Client) SetupStreams(ctx context.Context) error {
	// Create main jobs stream
	_, err := c.CreateStream(ctx, DefaultStreamConfig())
	if err != nil {
		return err
	}

	// Create consumers for each worker type
	consumers := []struct {
		name    string
		subject string
	}{
		{ConsumerScan, SubjectJobScan},
		{ConsumerGraph, SubjectJobGraph},
		{ConsumerReport, SubjectJobReport},
	}

	for _, cons := range consumers {
		if _, err := c.CreateConsumer(ctx, StreamJobs, cons.name, cons.subject); err != nil {
			return err
		}
	}

	return nil
}

// SubjectForJobType returns the NATS subject for a job type
func SubjectForJobType(jobType string) string {
	switch jobType {
	case "scan":
		return SubjectJobScan
	case "graph":
		return SubjectJobGraph
	case "report":
		return SubjectJobReport
	default:
		return ""
	}
}

// ConsumerForJobType returns the consumer name for a job type
func ConsumerForJobType(jobType string) string {
	switch jobType {
	case "scan":
		return ConsumerScan
	case "graph":
		return ConsumerGraph
	case "report":
		return ConsumerReport
	default:
		return ""
	}
}
