package canonicalpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_tsiWikimyeiFiveSegments(t *testing.T) {
	p := Decode("tsi.wikimyei.representation.vicreg.0x0001@jkimyei:tensor")
	require.True(t, p.Ok, p.Error)

	assert.Equal(t, []string{"tsi", "wikimyei", "representation", "vicreg", "0x0001"}, p.Segments)
	assert.Equal(t, "0x0001", p.Hashimyei)
	assert.Equal(t, "@jkimyei", p.Directive)
	assert.Equal(t, ":tensor", p.PayloadKind)
	assert.Equal(t, "tsi.wikimyei.representation.vicreg.0x0001@jkimyei:tensor", p.Canonical)
	assert.NotEmpty(t, p.IdentityHashName)
	assert.NotEmpty(t, p.EndpointHashName)
}

func TestDecode_inputOnlyDirectiveRejectedAsEndpoint(t *testing.T) {
	p := Decode("tsi.source.market@refresh:tensor")
	require.False(t, p.Ok)
	assert.Equal(t, "directive @refresh is input-only; cannot terminate an endpoint", p.Error)
}

func TestDecode_legacyAliasRejected(t *testing.T) {
	p := Decode("tsi.wave.generator")
	require.False(t, p.Ok)
	assert.Equal(t, "legacy alias 'tsi.wave.generator' is removed; use 'board.wave'", p.Error)
}

func TestDecode_fourSegmentFusedHashimyei(t *testing.T) {
	p := Decode("tsi.wikimyei.representation.vicreg_0x0002")
	require.True(t, p.Ok, p.Error)
	assert.Equal(t, []string{"tsi", "wikimyei", "representation", "vicreg", "0x0002"}, p.Segments)
	assert.Equal(t, "0x0002", p.Hashimyei)
}

func TestDecode_defaultHashimyeiAliasRejected(t *testing.T) {
	p := Decode("tsi.wikimyei.representation.vicreg.default")
	require.False(t, p.Ok)
	assert.Contains(t, p.Error, "legacy hashimyei alias 'default' is removed")
}

func TestDecode_callWithArgs(t *testing.T) {
	p := Decode("iinuji.view.data.plot(mode=seq,verbose)")
	require.True(t, p.Ok, p.Error)
	require.Len(t, p.Args, 2)
	assert.Equal(t, Arg{Key: "mode", Value: "seq"}, p.Args[0])
	assert.Equal(t, Arg{Key: "verbose"}, p.Args[1])
	assert.Equal(t, "iinuji.view.data.plot(mode=seq,verbose)", p.Canonical)
}

func TestDecode_invalidRootRejected(t *testing.T) {
	p := Decode("notaroot.foo")
	require.False(t, p.Ok)
	assert.Equal(t, "path root must be 'tsi', 'board', or 'iinuji'", p.Error)
}

func TestDecode_roundTrip(t *testing.T) {
	p := Decode("tsi.wikimyei.representation.vicreg.0x0001@jkimyei:tensor")
	require.True(t, p.Ok)

	again := Decode(p.Canonical)
	require.True(t, again.Ok)
	assert.Equal(t, p.Segments, again.Segments)
	assert.Equal(t, p.Args, again.Args)
	assert.Equal(t, p.Directive, again.Directive)
	assert.Equal(t, p.PayloadKind, again.PayloadKind)
}

func TestIdentityProvider_deterministicPerKey(t *testing.T) {
	p := NewIdentityProvider()
	a := p.Assign("tsi.wikimyei.representation.vicreg.0x0001.self")
	b := p.Assign("tsi.wikimyei.representation.vicreg.0x0001.self")
	assert.Equal(t, a, b)

	c := p.Assign("some.other.key.self")
	assert.NotEqual(t, a, c)
}

func TestIdentityProvider_overflowsPastSixteenKeys(t *testing.T) {
	p := NewIdentityProvider()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		name := p.Assign(string(rune('a' + i)))
		seen[name] = true
	}
	assert.GreaterOrEqual(t, len(seen), 16)
}

func TestSplitModelHashSuffix(t *testing.T) {
	model, hash, ok := SplitModelHashSuffix("vicreg_0x0002")
	require.True(t, ok)
	assert.Equal(t, "vicreg", model)
	assert.Equal(t, "0x0002", hash)

	_, _, ok = SplitModelHashSuffix("no_underscore_but_not_hex")
	assert.False(t, ok)
}

func TestDecodePrimitiveCommandText_shorthands(t *testing.T) {
	p := DecodePrimitiveCommandText("reload")
	require.True(t, p.Ok)
	assert.Equal(t, "iinuji.refresh()", p.CanonicalIdentity)

	p = DecodePrimitiveCommandText("data plot seq")
	require.True(t, p.Ok)
	assert.Equal(t, "iinuji.view.data.plot(mode=seq)", p.CanonicalIdentity)
}

func TestDecodePrimitiveEndpointText_aliasExpansion(t *testing.T) {
	p := DecodePrimitiveEndpointText("my-widget@jkimyei:tensor")
	require.True(t, p.Ok, p.Error)
	assert.Equal(t, []string{"iinuji", "primitive", "endpoint", "my_widget"}, p.Segments)
	assert.Equal(t, "@jkimyei", p.Directive)
}
