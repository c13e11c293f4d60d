// Package pipeline defines the core types, collaborator interfaces, and
// the phase orchestrator for the job ingestion pipeline.
package pipeline
