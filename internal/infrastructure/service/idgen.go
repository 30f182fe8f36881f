// Package service contains small infrastructure adapters: ID generation
// and notification delivery.
package service

import "github.com/google/uuid"

// UUIDGenerator implements command.IDGenerator with random UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a fresh UUID string.
func (g *UUIDGenerator) NewID() string {
	return uuid.New().String()
}
