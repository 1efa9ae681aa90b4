package http

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.json
var openAPIDocument []byte

// SwaggerInstance is the swag registry name the UI reads the document from.
const SwaggerInstance = "deliverytasks"

var registerSwagger sync.Once

// OpenAPIDocument returns the raw API description.
func OpenAPIDocument() []byte {
	return openAPIDocument
}

// LoadOpenAPI parses and validates the embedded API description.
func LoadOpenAPI() (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("http.LoadOpenAPI: %w", err)
	}
	if err = doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("http.LoadOpenAPI: %w", err)
	}

	return doc, nil
}

type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string {
	return string(openAPIDocument)
}

// RegisterSwagger makes the document available to echo-swagger. swag panics
// on duplicate names, so later calls are no-ops.
func RegisterSwagger() {
	registerSwagger.Do(func() {
		swag.Register(SwaggerInstance, swaggerDoc{})
	})
}
