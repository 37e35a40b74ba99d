// Package openapi serves the OpenAPI description of the rating API.
package openapi

import (
	_ "embed"
	"net/http"
)

// Document contains the embedded OpenAPI YAML document.
//
//go:embed openapi.yaml
var Document []byte

// Register attaches GET /openapi.yaml to mux.
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(Document)
	})
}
