package parser

import (
	"strings"

	"github.com/numerics88/inpdeck/internal/command"
)

// Classifier recognizes Abaqus keyword and comment lines.
//
// A keyword line starts with a single '*'. Its comma-separated tokens are
// the keyword name followed by KEY=VALUE or bare KEY parameters. Names and
// keys are upper-cased; values keep their case. A line starting with "**" is
// a comment.
type Classifier struct{}

var _ command.Classifier = Classifier{}

// Classify implements command.Classifier
func (Classifier) Classify(line string) (command.Command, bool) {
	if len(line) < 2 || line[0] != '*' || line[1] == '*' {
		return command.Command{}, false
	}
	tokens := strings.Split(line[1:], ",")
	name := strings.ToUpper(strings.Join(strings.Fields(tokens[0]), " "))
	if name == "" {
		return command.Command{}, false
	}

	params := command.Params{}
	for _, tok := range tokens[1:] {
		k, v, _ := strings.Cut(tok, "=")
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		params[k] = strings.TrimSpace(v)
	}
	return command.Command{Name: name, Params: params}, true
}

// IsComment implements command.Classifier
func (Classifier) IsComment(line string) bool {
	return strings.HasPrefix(line, "**")
}
