package model

import "time"

// HealthStatus describes the service and its configured store.
type HealthStatus struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Store       string    `json:"store"`
	StoreStatus string    `json:"storeStatus"`
	Timestamp   time.Time `json:"timestamp"`
}
