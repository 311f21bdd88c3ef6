package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string `json:"id"`
}

func TestFlexListSingleAndArray(t *testing.T) {
	var one FlexList[item]
	require.NoError(t, json.Unmarshal([]byte(` {"id":"a"}`), &one))
	assert.Equal(t, []item{{ID: "a"}}, one.Slice())

	var many FlexList[item]
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a"},{"id":"b"}]`), &many))
	assert.Len(t, many, 2)

	var none FlexList[item]
	require.NoError(t, json.Unmarshal([]byte(`null`), &none))
	assert.Nil(t, none)
}

func TestFlexListItemError(t *testing.T) {
	var list FlexList[item]
	err := json.Unmarshal([]byte(`[{"id":"a"},{"id":5}]`), &list)
	assert.ErrorContains(t, err, "item 1")
}

func TestFlexInt(t *testing.T) {
	cases := map[string]int{`3`: 3, `"4"`: 4, `""`: 0, `null`: 0, `"-1"`: -1}
	for in, want := range cases {
		var f FlexInt
		require.NoError(t, json.Unmarshal([]byte(in), &f), in)
		assert.Equal(t, want, f.Int(), in)
	}

	var f FlexInt
	assert.Error(t, json.Unmarshal([]byte(`"two"`), &f))
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &f))

	b, err := json.Marshal(FlexInt(7))
	require.NoError(t, err)
	assert.Equal(t, `7`, string(b))
}

func TestCustomError(t *testing.T) {
	e := NewError(404, "tenant.notFound", "Tenant '%s' not found", "acme")
	assert.Equal(t, "404: Tenant 'acme' not found [type: tenant.notFound]", e.Error())
	assert.Nil(t, errors.Unwrap(e))

	cause := errors.New("disk full")
	w := Wrap(500, "tenant.lookup", "Tenant lookup failed", cause)
	assert.ErrorIs(t, w, cause)
	assert.Contains(t, w.Error(), "disk full")

	var ce *CustomError
	assert.True(t, errors.As(error(w), &ce))
	assert.Equal(t, 500, ce.Code)
}
