// Package gateway defines the normalized request and response exchanged with
// the routing layer in front of the product handler.
package gateway

// Request is a routed HTTP request. Resource is the route template that
// matched (e.g. "/products/{productId}"), not the concrete path.
type Request struct {
	HTTPMethod            string            `json:"httpMethod"`
	Resource              string            `json:"resource"`
	Path                  string            `json:"path,omitempty"`
	PathParameters        map[string]string `json:"pathParameters"`
	QueryStringParameters map[string]string `json:"queryStringParameters"`
	Body                  string            `json:"body"`
}

// PathParameter returns the named path parameter, or "" when absent.
func (r Request) PathParameter(name string) string {
	return r.PathParameters[name]
}

// QueryParameter returns the named query string parameter, or "" when absent.
func (r Request) QueryParameter(name string) string {
	return r.QueryStringParameters[name]
}
