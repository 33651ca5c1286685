package interfaces

// Service is implemented by every interface exposing the address service,
// whatever the transport. Start must not block.
type Service interface {
	Start() error
	Stop()
}
