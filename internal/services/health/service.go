package health

// Service encapsulates health-related checks.
type Service struct {
	version string
}

// NewService constructs a new health service.
func NewService(version string) *Service {
	return &Service{version: version}
}

// Status returns the fixed liveness payload.
func (s *Service) Status() map[string]string {
	return map[string]string{
		"status":  "healthy",
		"version": s.version,
	}
}
