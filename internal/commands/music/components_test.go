package music

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func panelCustomIDs(t *testing.T) []string {
	t.Helper()
	var ids []string
	for _, row := range ControlPanel() {
		actionsRow, ok := row.(discordgo.ActionsRow)
		require.True(t, ok, "panel rows must be action rows")
		for _, comp := range actionsRow.Components {
			button, ok := comp.(discordgo.Button)
			require.True(t, ok, "panel components must be buttons")
			ids = append(ids, button.CustomID)
		}
	}
	return ids
}

func TestControlPanelHasBlastButton(t *testing.T) {
	assert.Contains(t, panelCustomIDs(t), panelID+":blast")
}

func TestControlPanelButtonsShareThePanelPrefix(t *testing.T) {
	for _, id := range panelCustomIDs(t) {
		assert.Regexp(t, "^"+panelID+":", id)
	}
}

func TestConfirmsBlastIgnoresCase(t *testing.T) {
	assert.True(t, confirmsBlast("I AGREE"))
	assert.True(t, confirmsBlast("i agree"))
	assert.True(t, confirmsBlast("  I Agree  "))

	assert.False(t, confirmsBlast(""))
	assert.False(t, confirmsBlast("no"))
	assert.False(t, confirmsBlast("I AGREE!"))
}
