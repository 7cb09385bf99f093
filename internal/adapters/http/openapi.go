package httpadapter

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

//go:embed openapi.yaml
var compareOpenAPIDocument []byte

// compareValidator checks POST /v1/compare bodies against the embedded
// OpenAPI document before they reach the handler.
type compareValidator struct {
	route *routers.Route
}

func newCompareValidator() (*compareValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(compareOpenAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	pathItem := doc.Paths.Value("/v1/compare")
	if pathItem == nil || pathItem.Post == nil {
		return nil, fmt.Errorf("openapi document has no POST /v1/compare")
	}
	return &compareValidator{route: &routers.Route{
		Spec:      doc,
		Path:      "/v1/compare",
		PathItem:  pathItem,
		Method:    http.MethodPost,
		Operation: pathItem.Post,
	}}, nil
}

func (v *compareValidator) validate(ctx context.Context, r *http.Request) error {
	err := openapi3filter.ValidateRequest(ctx, &openapi3filter.RequestValidationInput{
		Request: r,
		Route:   v.route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	})
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "validate compare request", err)
	}
	return nil
}

func (v *compareValidator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxCompareBodyBytes)
		if err := v.validate(r.Context(), r); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
