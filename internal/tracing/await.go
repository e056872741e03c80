package tracing

import "context"

// await runs op and returns its result or the context's error, whichever
// comes first. op keeps running in the background after a timeout; when
// release is non-nil, a result that arrives late is handed to it so whatever
// op built can be torn down.
func await[T any](ctx context.Context, op func(ctx context.Context) (T, error), release func(T)) (T, error) {
	type result struct {
		val T
		err error
	}

	done := make(chan result, 1)
	go func() {
		v, err := op(ctx)
		done <- result{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		if release != nil {
			go func() {
				if r := <-done; r.err == nil {
					release(r.val)
				}
			}()
		}
		var zero T
		return zero, ctx.Err()
	}
}
