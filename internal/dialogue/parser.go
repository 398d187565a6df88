// Package dialogue turns raw generator output into branching dialogue nodes.
// The branching "tree" is never stored: each node is derived on demand from
// the last selected option, so the current state is always whatever the last
// generation produced and a session can resume from its transcript alone.
package dialogue

import (
	"errors"
	"regexp"
	"strings"

	"npc-dialogue-engine/backend/internal/models"
)

// ErrMalformedOutput marks generator output with no DIALOGUE line. This is a
// generation-quality failure, not a system failure: callers log it and carry
// on with an empty node rather than failing the session.
var ErrMalformedOutput = errors.New("generator output has no DIALOGUE line")

const dialoguePrefix = "DIALOGUE:"

// Option numbering starts at 1, so OPTION0 is not part of the format. Numbers
// above 4 are accepted: over-long generations are kept, not truncated.
var optionPrefix = regexp.MustCompile(`^OPTION[1-9][0-9]*:`)

// ParseNode extracts a dialogue node from raw generator text.
//
// The first line starting with DIALOGUE: supplies the node text. Every later
// line starting with OPTIONn: contributes one option in the order encountered;
// numbering gaps and duplicates are kept as-is, and no upper bound is enforced
// here (the prompt, not the parser, asks for at most four). Lines matching
// neither prefix are formatting noise and ignored. Empty option text is kept:
// it is caller-visible evidence of a generation-quality problem.
func ParseNode(raw string) (models.DialogueNode, error) {
	var node models.DialogueNode
	found := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		if !found {
			if strings.HasPrefix(line, dialoguePrefix) {
				node.Text = strings.TrimSpace(strings.TrimPrefix(line, dialoguePrefix))
				found = true
			}
			continue
		}

		if m := optionPrefix.FindString(line); m != "" {
			node.Options = append(node.Options, strings.TrimSpace(line[len(m):]))
		}
	}

	if !found {
		return models.DialogueNode{}, ErrMalformedOutput
	}

	return node, nil
}
