// Package config loads program configuration for leafs applications from
// YAML files, .env files, and the process environment, in that order of
// precedence. Programs embed ServiceConfig in their own config structs and
// load them through LoadConfig.
package config
