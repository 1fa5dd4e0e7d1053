// Package logger provides structured logging for smd built on zerolog.
//
// A single Logger interface backs both pretty console output and an
// append-only log file.
// Components receive a Logger (or fall back to the global instance) and
// attach context through WithField/WithFields.
package logger
