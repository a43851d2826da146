// Package logger records console activity as newline delimited JSON so
// external tooling can audit what sessions did.
package logger
