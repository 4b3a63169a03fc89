package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneCircuitInstruction = `CIRCUIT pipeline1 ` +
	`INSTANCE srcA tsi.source.market ` +
	`INSTANCE repB tsi.wikimyei.representation.vicreg.0x0001 ` +
	`HOP srcA@wave:tensor -> repB@refresh:tensor ` +
	`INVOKE run "mode=live,window=30" ` +
	`ENDCIRCUIT `

func TestBoardDecoder_oneCircuit(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	result, err := d.Decode(oneCircuitInstruction)
	require.NoError(t, err)

	require.Len(t, result.Circuits, 1)
	c := result.Circuits[0]
	assert.Equal(t, "pipeline1", c.Name)

	require.Len(t, c.Instances, 2)
	assert.Equal(t, Instance{Alias: "srcA", TSIType: "tsi.source.market"}, c.Instances[0])
	assert.Equal(t, Instance{Alias: "repB", TSIType: "tsi.wikimyei.representation.vicreg.0x0001"}, c.Instances[1])

	require.Len(t, c.Hops, 1)
	assert.Equal(t, Endpoint{Instance: "srcA", Directive: "@wave", Kind: ":tensor"}, c.Hops[0].From)
	assert.Equal(t, Endpoint{Instance: "repB", Directive: "@refresh", Kind: ":tensor"}, c.Hops[0].To)

	assert.Equal(t, "run", c.InvokeName)
	assert.Equal(t, "mode=live,window=30", c.InvokePayload)
}

const twoCircuitInstruction = `CIRCUIT first ` +
	`INSTANCE a tsi.source.market ` +
	`INVOKE go "now" ` +
	`ENDCIRCUIT ` +
	`CIRCUIT second ` +
	`INSTANCE b tsi.source.market ` +
	`HOP b@wave:tensor -> b@refresh:tensor ` +
	`INVOKE start "note" ` +
	`ENDCIRCUIT `

func TestBoardDecoder_multipleCircuits(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	result, err := d.Decode(twoCircuitInstruction)
	require.NoError(t, err)
	require.Len(t, result.Circuits, 2)
	assert.Equal(t, "first", result.Circuits[0].Name)
	assert.Empty(t, result.Circuits[0].Hops)
	assert.Equal(t, "second", result.Circuits[1].Name)
	require.Len(t, result.Circuits[1].Hops, 1)
}

func TestBoardDecoder_unknownDirectiveFails(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	bad := `CIRCUIT pipeline1 ` +
		`INSTANCE srcA tsi.source.market ` +
		`INSTANCE repB tsi.wikimyei.representation.vicreg.0x0001 ` +
		`HOP srcA@nosuchdirective:tensor -> repB@jkimyei:tensor ` +
		`INVOKE run "mode=live" ` +
		`ENDCIRCUIT `

	_, err = d.Decode(bad)
	assert.Error(t, err)
}

func TestBoardDecoder_hopDirectionMismatchFails(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	bad := `CIRCUIT pipeline1 ` +
		`INSTANCE srcA tsi.source.market ` +
		`INSTANCE repB tsi.wikimyei.representation.vicreg.0x0001 ` +
		`HOP srcA@jkimyei:tensor -> repB@wikimyei:tensor ` +
		`INVOKE run "mode=live" ` +
		`ENDCIRCUIT `

	_, err = d.Decode(bad)
	assert.Error(t, err)
}

func TestBoardDecoder_hopKindMismatchFails(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	bad := `CIRCUIT pipeline1 ` +
		`INSTANCE a tsi.source.market ` +
		`INSTANCE b tsi.wikimyei.representation.vicreg.0x0001 ` +
		`HOP a@wave:tensor -> b@bind:str ` +
		`INVOKE run "mode=live" ` +
		`ENDCIRCUIT `

	_, err = d.Decode(bad)
	assert.Error(t, err)
}

func TestBoardDecoder_malformedInstructionFails(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	_, err = d.Decode(`CIRCUIT pipeline1 INSTANCE srcA tsi.source.market ENDCIRCUIT `)
	assert.Error(t, err)
}
