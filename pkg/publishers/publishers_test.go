package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
}

func TestValidatePublisherConfigRejectsMissingHTTP(t *testing.T) {
	err := PublisherConfig{ID: "h1", Type: TypeHTTP}.validate()
	if err == nil {
		t.Fatalf("expected validation error for missing http block")
	}
}

func TestLoadRegistryParsesCloudSinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: queue
    type: SQS
    sqs:
      uri: " https://sqs.local/queue "
      region: us-east-1
      endpoint: http://localhost:4566
      access_key_id: test
      secret_access_key: test
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:us-east-1:000000000000:outcomes
      region: us-east-1
  - id: gcp
    type: pubsub
    pubsub:
      project_id: demo
      topic: outcomes
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	queue, ok := reg.ByID("queue")
	if !ok || queue.Type != TypeSQS {
		t.Fatalf("unexpected queue config %#v", queue)
	}
	if queue.SQS.QueueURL != "https://sqs.local/queue" || queue.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("sqs config not sanitized: %#v", queue.SQS)
	}
	if topic, _ := reg.ByID("topic"); topic.SNS == nil || topic.SNS.Region != "us-east-1" {
		t.Fatalf("unexpected sns config %#v", topic.SNS)
	}
	if gcp, _ := reg.ByID("gcp"); gcp.PubSub == nil || gcp.PubSub.Topic != "outcomes" {
		t.Fatalf("unexpected pubsub config %#v", gcp.PubSub)
	}
}

func TestValidatePublisherConfigRejectsIncompleteSNS(t *testing.T) {
	err := PublisherConfig{
		ID:   "topic",
		Type: TypeSNS,
		SNS:  &SNSPublisherConfig{TopicARN: "arn:aws:sns:::t"},
	}.validate()
	if err == nil {
		t.Fatalf("expected validation error for sns without region")
	}
}

func TestLoadRegistryRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.toml")
	if err := os.WriteFile(path, []byte("publishers = []"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}
