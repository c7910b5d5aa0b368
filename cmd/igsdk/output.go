package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
	"igsdk/pkg/instagram"
)

// writeResponse renders a decoded body in the requested format
func writeResponse(w io.Writer, format string, body instagram.Response) error {
	switch format {
	case "json", "":
		data, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(plainValue(map[string]interface{}(body)))
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}

// plainValue converts json.Number leaves so yaml prints them as numbers
func plainValue(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = plainValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = plainValue(val)
		}
		return out
	default:
		return v
	}
}

// providerError turns an Instagram error body into a command failure
func providerError(body instagram.Response) error {
	if !body.IsError() {
		return nil
	}
	if t := body.ErrorType(); t != "" {
		return fmt.Errorf("instagram returned %s: %s", t, body.ErrorMessage())
	}
	return fmt.Errorf("instagram returned an error: %s", body.ErrorMessage())
}
