package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plotPanelInstruction = `SCREEN F+7 PANEL P1 plot at 0 0 6 4 z 1 scale 1 bind ARG2 draw CURVE D Y ENDPANEL ENDSCREEN`

func TestRenderingDecoder_plotPanelShape(t *testing.T) {
	d, err := NewRenderingDecoder()
	require.NoError(t, err)

	result, err := d.Decode(plotPanelInstruction)
	require.NoError(t, err)

	require.Len(t, result.Screens, 1)
	screen := result.Screens[0]
	assert.Equal(t, "F+7", screen.ID)
	require.Len(t, screen.Panels, 1)

	panel := screen.Panels[0]
	assert.Equal(t, "P1", panel.ID)
	assert.Equal(t, "plot", panel.Kind)
	assert.Equal(t, 0.0, panel.Coords.X)
	assert.Equal(t, 0.0, panel.Coords.Y)
	assert.Equal(t, 6.0, panel.Shape.W)
	assert.Equal(t, 4.0, panel.Shape.H)
	assert.Equal(t, 1, panel.ZIndex)
	assert.Equal(t, 1.0, panel.Scale)
	assert.Equal(t, []string{"ARG2"}, panel.Triggers)
	assert.Equal(t, "CURVE", panel.DrawType)
	assert.Equal(t, []string{"D", "Y"}, panel.DrawArgs)
}

const decoratedPanelInstruction = `SCREEN S1 PANEL P2 chart coords 10,20 shape 5,5 color red color #fff border true ` +
	`title "Chart One" value "42" legend "Legend text" ` +
	`form local:amount,path:tsi.wikimyei.representation.vicreg.0x0001 bind ARG1,ARG2 ` +
	`/* this block comment is ignored entirely, including ENDPANEL-looking text */ ENDPANEL ENDSCREEN`

func TestRenderingDecoder_propertyMechanics(t *testing.T) {
	d, err := NewRenderingDecoder()
	require.NoError(t, err)

	result, err := d.Decode(decoratedPanelInstruction)
	require.NoError(t, err)

	require.Len(t, result.Screens, 1)
	require.Len(t, result.Screens[0].Panels, 1)
	panel := result.Screens[0].Panels[0]

	assert.Equal(t, "P2", panel.ID)
	assert.Equal(t, "chart", panel.Kind)
	assert.Equal(t, 10.0, panel.Coords.X)
	assert.Equal(t, 20.0, panel.Coords.Y)
	assert.Equal(t, 5.0, panel.Shape.W)
	assert.Equal(t, 5.0, panel.Shape.H)
	assert.Equal(t, []string{"red", "#fff"}, panel.Colors)
	assert.True(t, panel.Border)
	assert.Equal(t, "Chart One", panel.Title)
	assert.Equal(t, "42", panel.Value)
	assert.Equal(t, "Legend text", panel.Legend)
	require.Len(t, panel.Form, 2)
	assert.Equal(t, FormBinding{Scope: "local", Path: "amount"}, panel.Form[0])
	assert.Equal(t, FormBinding{Scope: "path", Path: "tsi.wikimyei.representation.vicreg.0x0001"}, panel.Form[1])
	assert.Equal(t, []string{"ARG1", "ARG2"}, panel.Triggers)
}

const multiEntityScreenInstruction = `SCREEN S2 ` +
	`FIGURE FG1 line at 1 1 2 2 thickness 2 ENDFIGURE ` +
	`EVENT EV1 alert capacity 3 ENDEVENT ` +
	`ENDSCREEN`

func TestRenderingDecoder_figuresAndEvents(t *testing.T) {
	d, err := NewRenderingDecoder()
	require.NoError(t, err)

	result, err := d.Decode(multiEntityScreenInstruction)
	require.NoError(t, err)

	require.Len(t, result.Screens, 1)
	screen := result.Screens[0]
	require.Len(t, screen.Figures, 1)
	require.Len(t, screen.Events, 1)

	fig := screen.Figures[0]
	assert.Equal(t, "FG1", fig.ID)
	assert.Equal(t, "line", fig.Kind)
	assert.Equal(t, 2.0, fig.Thickness)

	ev := screen.Events[0]
	assert.Equal(t, "EV1", ev.ID)
	assert.Equal(t, "alert", ev.Kind)
	assert.Equal(t, 3.0, ev.Capacity)
}

func TestRenderingDecoder_malformedInstructionFails(t *testing.T) {
	d, err := NewRenderingDecoder()
	require.NoError(t, err)

	_, err = d.Decode("SCREEN S1 PANEL P1 x ENDSCREEN")
	assert.Error(t, err)
}
