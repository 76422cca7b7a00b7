package circbuf

type config[T any] struct {
	copier        func(T) (T, error)
	telemetryName string
}

// Option configures a RingBuffer or a Queue at construction time.
type Option[T any] func(*config[T])

// WithCopier sets the deep-copy hook used by Clone, CopyFrom and the copy
// path of Resize. When no copier is configured, those operations transfer
// elements by plain assignment and cannot fail; when one is configured, its
// error aborts the operation with the guarantee documented on each method.
// Construction from existing values (FromSlice, Collect) copies by plain
// assignment and never invokes the copier.
func WithCopier[T any](copier func(T) (T, error)) Option[T] {
	return func(cfg *config[T]) {
		cfg.copier = copier
	}
}

// WithTelemetry enables OpenTelemetry metrics on a Queue, published under the
// given queue name. It has no effect on a plain RingBuffer.
func WithTelemetry[T any](name string) Option[T] {
	return func(cfg *config[T]) {
		cfg.telemetryName = name
	}
}
