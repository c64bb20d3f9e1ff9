package stdx

// Zero returns the zero value for the type T.
//
// The bus uses this to mint a throwaway instance of a message type so it can
// ask the instance for its kind without requiring callers to pass one in.
func Zero[T any]() T {
	var zero T
	return zero
}
