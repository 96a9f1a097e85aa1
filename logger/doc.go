// Package logger provides structured logging for leafs built on zerolog.
//
// The module registry writes one error line per failure path and one info
// line per successful lifecycle transition through a component-tagged
// logger obtained from this package.
package logger
