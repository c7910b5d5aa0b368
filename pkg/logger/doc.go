// Package logger provides the structured logging interface used across igsdk.
//
// It wraps zerolog and exposes a small field-oriented API:
//
//	log := logger.GetLogger().WithField("component", "instagram")
//	log.DebugWithFields("sending HTTP request", map[string]interface{}{
//	    "method": "GET",
//	    "url":    "https://graph.instagram.com/me",
//	})
//
// Call Initialize once from main with the logging section of the loaded
// configuration. Tests use NewTestLogger to capture and assert on messages.
package logger
