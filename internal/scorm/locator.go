package scorm

// maxParentHops bounds the parent chain walk. Some hosts nest the player in
// frame structures without a parent terminator, so an unbounded walk could
// loop forever.
const maxParentHops = 500

// Frame is one node of the window hierarchy the course was launched in.
// Implementations adapt whatever embedding structure hosts the player; tests
// use synthetic hierarchies.
type Frame interface {
	// Parent returns the enclosing frame, or nil at the top of the chain
	Parent() Frame
	// Opener returns the frame that opened this window, or nil
	Opener() Frame
	// API returns the runtime handle attached to this frame, or nil
	API() Runtime
}

// Locate searches for a runtime handle by walking up the parent chain of the
// given frame, then, if nothing was found, repeating the search from the
// opener window, recursively. Returns nil when both chains are exhausted.
func Locate(frame Frame) Runtime {
	if frame == nil {
		return nil
	}
	if api := scanParentChain(frame); api != nil {
		return api
	}
	return Locate(frame.Opener())
}

func scanParentChain(frame Frame) Runtime {
	for hops := 0; frame != nil && hops < maxParentHops; hops++ {
		if api := frame.API(); api != nil {
			return api
		}
		frame = frame.Parent()
	}
	return nil
}
