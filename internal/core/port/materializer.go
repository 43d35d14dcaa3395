package port

import "context"

type Materializer interface {
	// Materialize turns a result reference, either a base64 data URI or a
	// fetchable URL, into a saved local artifact and returns its path.
	Materialize(ctx context.Context, ref string, suggestedName string) (string, error)
}
