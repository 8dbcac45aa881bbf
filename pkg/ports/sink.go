package ports

// FrameSink persists single frames, used by the capture scheduler.
type FrameSink interface {
	// Save writes the frame into dir, creating dir if needed, and returns the written path.
	Save(frame Frame, dir string) (string, error)
}
