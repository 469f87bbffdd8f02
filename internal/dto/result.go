package dto

// Result is the outcome of a mutating use case. The presentation layer turns
// it into either a flash message plus redirect or a JSON object.
type Result struct {
	Success  bool
	Message  string
	Redirect string
	Extra    map[string]interface{}
}

// Succeeded builds a successful result carrying the given message.
func Succeeded(message string) *Result {
	return &Result{Success: true, Message: message}
}

// With attaches an extra JSON field to the result.
func (r *Result) With(key string, value interface{}) *Result {
	if r.Extra == nil {
		r.Extra = make(map[string]interface{})
	}
	r.Extra[key] = value
	return r
}
