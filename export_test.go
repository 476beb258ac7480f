package reportcanvas

// LoopRunning reports whether a frame loop is ticking the session's surface.
func LoopRunning(s *Session) bool {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	return s.loopDone != nil
}
