package pipeline

// CompileInput names the directories of a timelapse compile.
type CompileInput struct {
	FramesDir string
	OutputDir string
}
