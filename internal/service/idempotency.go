package service

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// idempotencyRecord is what a keyed submission leaves behind. ApplicationID is empty while
// the first request is still running.
type idempotencyRecord struct {
	RequestHash   string `json:"request_hash"`
	ApplicationID string `json:"application_id,omitempty"`
}

func hashSubmission(in SubmitApplicationInput) (string, error) {
	in.IdempotencyKey = ""
	payload, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func encodeIdempotencyRecord(record idempotencyRecord) (string, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func decodeIdempotencyRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}
