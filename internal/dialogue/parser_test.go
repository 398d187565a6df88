package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeBasic(t *testing.T) {
	node, err := ParseNode("DIALOGUE: Hello\nOPTION1: Hi\nOPTION2: Bye")
	require.NoError(t, err)

	assert.Equal(t, "Hello", node.Text)
	assert.Equal(t, []string{"Hi", "Bye"}, node.Options)
	assert.False(t, node.IsTerminal())
}

func TestParseNodeMissingDialogueLine(t *testing.T) {
	node, err := ParseNode("OPTION1: Hi\nsome rambling text")
	require.ErrorIs(t, err, ErrMalformedOutput)

	assert.Equal(t, "", node.Text)
	assert.Empty(t, node.Options)
}

func TestParseNodeIgnoresNoiseLines(t *testing.T) {
	raw := "Here is your dialogue:\n\nDIALOGUE: Welcome to my forge.\n---\nOPTION1: Browse wares\nSure, anything else?\nOPTION2: Leave"
	node, err := ParseNode(raw)
	require.NoError(t, err)

	assert.Equal(t, "Welcome to my forge.", node.Text)
	assert.Equal(t, []string{"Browse wares", "Leave"}, node.Options)
}

func TestParseNodeKeepsFileOrderNotSlotOrder(t *testing.T) {
	node, err := ParseNode("DIALOGUE: Hmm.\nOPTION3: Third slot\nOPTION1: First slot")
	require.NoError(t, err)

	assert.Equal(t, []string{"Third slot", "First slot"}, node.Options)
}

func TestParseNodeDoesNotTruncateExtraOptions(t *testing.T) {
	raw := "DIALOGUE: Pick one.\nOPTION1: a\nOPTION2: b\nOPTION3: c\nOPTION4: d\nOPTION5: e"
	node, err := ParseNode(raw)
	require.NoError(t, err)

	assert.Len(t, node.Options, 5)
	assert.Equal(t, "e", node.Options[4])
}

func TestParseNodeKeepsEmptyOptionText(t *testing.T) {
	node, err := ParseNode("DIALOGUE: Hm.\nOPTION1:\nOPTION2: Leave")
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Leave"}, node.Options)
}

func TestParseNodeIgnoresZeroNumberedOption(t *testing.T) {
	node, err := ParseNode("DIALOGUE: Hm.\nOPTION0: not in the format\nOPTION1: Hi")
	require.NoError(t, err)

	assert.Equal(t, []string{"Hi"}, node.Options)
}

func TestParseNodeKeepsDuplicateNumbers(t *testing.T) {
	node, err := ParseNode("DIALOGUE: Hm.\nOPTION1: a\nOPTION1: b")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, node.Options)
}

func TestParseNodeTerminal(t *testing.T) {
	node, err := ParseNode("DIALOGUE: Farewell, traveler.")
	require.NoError(t, err)

	assert.Equal(t, "Farewell, traveler.", node.Text)
	assert.True(t, node.IsTerminal())
}

func TestParseNodeTrimsWhitespace(t *testing.T) {
	node, err := ParseNode("  DIALOGUE:   Hello there.  \n  OPTION1:  Hi  ")
	require.NoError(t, err)

	assert.Equal(t, "Hello there.", node.Text)
	assert.Equal(t, []string{"Hi"}, node.Options)
}

func TestParseNodeIgnoresOptionsBeforeDialogue(t *testing.T) {
	node, err := ParseNode("OPTION1: early\nDIALOGUE: Hello\nOPTION2: late")
	require.NoError(t, err)

	assert.Equal(t, "Hello", node.Text)
	assert.Equal(t, []string{"late"}, node.Options)
}
