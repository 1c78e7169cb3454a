package models

import (
	"encoding/json"
	"time"
)

// BackupEnvelope is the unit of backup, restore and remote sync. Payload
// sections stay raw so a restore writes back exactly what was exported.
type BackupEnvelope struct {
	Version    string          `json:"version"`
	Timestamp  string          `json:"timestamp"`
	Students   json.RawMessage `json:"students"`
	Payments   json.RawMessage `json:"payments"`
	BankConfig json.RawMessage `json:"bankConfig"`
	Profiles   json.RawMessage `json:"profiles"`
}

// SyncDirection distinguishes push from pull.
type SyncDirection string

const (
	SyncPush SyncDirection = "push"
	SyncPull SyncDirection = "pull"
	SyncAuto SyncDirection = "auto"
)

// SyncStatus is the last observed outcome of a sync, shown as a transient
// notice by the caller.
type SyncStatus struct {
	Operation  SyncDirection `json:"operation,omitempty"`
	InProgress bool          `json:"inProgress"`
	Success    bool          `json:"success"`
	Message    string        `json:"message,omitempty"`
	ErrorCode  string        `json:"errorCode,omitempty"`
	ReloadNeed bool          `json:"reloadRequired"`
	At         time.Time     `json:"at"`
}

// RemoteDiagnosis reports what the remote store accepted for a config.
type RemoteDiagnosis struct {
	RepositoryFound bool   `json:"repositoryFound"`
	FullName        string `json:"fullName,omitempty"`
	Private         bool   `json:"private"`
	CanWrite        bool   `json:"canWrite"`
	FileExists      bool   `json:"fileExists"`
	FileSize        int64  `json:"fileSize,omitempty"`
	FileSHA         string `json:"fileSha,omitempty"`
	Message         string `json:"message,omitempty"`
}
