package command

// Params holds the parameters of a command line, keyed by normalized name.
// Bare parameters (no "=") map to the empty string.
type Params map[string]string

// Has reports whether the parameter is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Get returns the parameter value and whether it was present.
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// GetDefault returns the parameter value, or def when absent.
func (p Params) GetDefault(key, def string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Command is a classified command line.
type Command struct {
	Name   string
	Params Params
}

// Classifier recognizes command and comment lines of a particular file
// syntax. Implementations must be pure functions of the line content.
type Classifier interface {
	// Classify reports whether line begins a command, and if so returns its
	// normalized name and parameters.
	Classify(line string) (Command, bool)

	// IsComment reports whether line is a comment.
	IsComment(line string) bool
}
