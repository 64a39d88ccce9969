package driven

// ConnectivityProbe reports whether the catalog can currently be reached.
// It is queried synchronously before every search and must be cheap.
type ConnectivityProbe interface {
	IsReachable() bool
}
