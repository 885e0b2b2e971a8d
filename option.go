package reactive

// Option configures an optional tunable on a constructor. It follows the
// functional-options shape used throughout the wider codebase this library
// was extracted from (see internal/logging.Setup): a typed config struct
// with zero value defaults, mutated by a small number of With* functions.
type Option[T any] func(*T)

func apply[T any](cfg *T, opts []Option[T]) *T {
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}
