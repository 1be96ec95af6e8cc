package hello

// GetOutput is the response for GET /hello.
type GetOutput struct {
	Body Data
}

// CreateOutput is the response for POST /hello.
type CreateOutput struct {
	Body Data
}
