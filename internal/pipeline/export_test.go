package pipeline

// SetRunIDFunc replaces the run id generator of s.
func SetRunIDFunc(s *Service, f func() string) {
	s.newRunID = f
}
