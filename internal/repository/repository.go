// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
// Implementations report missing rows with sql.ErrNoRows; mapping to domain errors is left to services.
package repository
