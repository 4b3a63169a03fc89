package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lossFunctionsInstruction = `loss_functions_table
====
|row_id|type|options|
|vr|VICReg|"sim_coeff=25,std_coeff=25,cov_coeff=1,huber_delta=1"|
====
optimizers_table
====
|row_id|type|lr|
|adam|Adam|0.001|
====
`

func TestTableDecoder_twoTablesRowAndFieldLookup(t *testing.T) {
	d, err := NewTableDecoder()
	require.NoError(t, err)

	ts, err := d.Decode(lossFunctionsInstruction)
	require.NoError(t, err)

	assert.Equal(t, []string{"loss_functions_table", "optimizers_table"}, ts.Names())

	typ, ok := ts.GetField("loss_functions_table", "vr", "type")
	require.True(t, ok)
	assert.Equal(t, "VICReg", typ)

	opts, ok := ts.GetField("loss_functions_table", "vr", "options")
	require.True(t, ok)
	kv := ParseKV(opts)
	assert.Equal(t, "25", kv["sim_coeff"])
	assert.Equal(t, "25", kv["std_coeff"])
	assert.Equal(t, "1", kv["cov_coeff"])
	assert.Equal(t, "1", kv["huber_delta"])

	lr, ok := ts.GetField("optimizers_table", "adam", "lr")
	require.True(t, ok)
	assert.Equal(t, "0.001", lr)
}

func TestTableDecoder_missingRowOrColumnIsNotFound(t *testing.T) {
	d, err := NewTableDecoder()
	require.NoError(t, err)

	ts, err := d.Decode(lossFunctionsInstruction)
	require.NoError(t, err)

	_, ok := ts.GetField("loss_functions_table", "nonexistent", "type")
	assert.False(t, ok)

	_, ok = ts.GetTable("not_a_table")
	assert.False(t, ok)
}

func TestTableDecoder_rawEventLogOrder(t *testing.T) {
	d, err := NewTableDecoder()
	require.NoError(t, err)

	ts, err := d.Decode(lossFunctionsInstruction)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(ts.Raw), 4)
	assert.Equal(t, "TABLE_TITLE", ts.Raw[0].Label)
	assert.Equal(t, "loss_functions_table", ts.Raw[0].Value)
}

func TestTableDecoder_malformedInstructionFails(t *testing.T) {
	d, err := NewTableDecoder()
	require.NoError(t, err)

	_, err = d.Decode("not a table at all")
	assert.Error(t, err)
}

func TestParseKV_bareKeysMapToEmptyString(t *testing.T) {
	kv := ParseKV("enabled,mode=fast")
	assert.Equal(t, "", kv["enabled"])
	assert.Equal(t, "fast", kv["mode"])
}
