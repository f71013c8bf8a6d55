package graphqlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Client posts GraphQL operations to the backend.
type Client interface {
	Do(ctx context.Context, op *Operation, variables map[string]interface{}, token string, out interface{}) error
}

// Operation is a parsed GraphQL document ready to be sent.
type Operation struct {
	Name  string
	Query string
}

type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string        `json:"message"`
		Path    []interface{} `json:"path,omitempty"`
	} `json:"errors"`
}

// Error is a GraphQL-level error reported by the backend.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// MustParse parses a query document and panics when it is invalid.
// Operations are package-level constants so a bad document is a programming error.
func MustParse(query string) *Operation {
	op, err := Parse(query)
	if err != nil {
		panic(err)
	}
	return op
}

// Parse validates the syntax of a query document.
func Parse(query string) (*Operation, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "operation", Input: query})
	if err != nil {
		return nil, fmt.Errorf("invalid graphql document: %w", err)
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("graphql document must contain exactly one operation, got %d", len(doc.Operations))
	}
	return &Operation{Name: doc.Operations[0].Name, Query: query}, nil
}

func NewClient(endpoint string) *HTTPClient {
	return NewClientWithHTTP(endpoint, nil)
}

func NewClientWithHTTP(endpoint string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: httpClient,
	}
}

// Do sends one operation. The first GraphQL error, if any, is returned as *Error.
func (c *HTTPClient) Do(ctx context.Context, op *Operation, variables map[string]interface{}, token string, out interface{}) error {
	if op == nil {
		return fmt.Errorf("operation is required")
	}
	body, err := json.Marshal(request{Query: op.Query, OperationName: op.Name, Variables: variables})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("graphql backend returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return &Error{Message: decoded.Errors[0].Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graphql backend returned status %d", resp.StatusCode)
	}
	if out == nil || len(decoded.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return fmt.Errorf("failed to decode graphql data: %w", err)
	}
	return nil
}
