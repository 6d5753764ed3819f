package views

import "net/http"

// Index renders the index template with an empty context.
func Index(r *http.Request, params map[string]string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}
