// Package validation provides struct-tag and programmatic validation used
// by leafs program configuration. Tag validation is backed by
// go-playground/validator; results surface as structured registry errors.
package validation
