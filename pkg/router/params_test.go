package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams(t *testing.T) {
	p := Params{
		{Name: "id", Value: "1"},
		{Name: "tag", Value: "a"},
		{Name: "id", Value: "2"},
	}

	assert.Equal(t, "1", p.Get("id"))
	assert.Equal(t, []string{"1", "2"}, p.All("id"))
	assert.True(t, p.Has("tag"))
	assert.False(t, p.Has("missing"))
	assert.Equal(t, "", p.Get("missing"))

	_, ok := p.Lookup("missing")
	assert.False(t, ok)
}

func TestParamsFromChain(t *testing.T) {
	r, _ := newTestRouter(t, "/orgs/acme/teams/core", []RouteDef{
		{Path: "orgs/:id", Component: comp("org"), Children: []RouteDef{
			{Path: "teams/:id", Component: comp("team")},
		}},
	})
	mount(t, r)

	assert.Equal(t, Params{{Name: "id", Value: "acme"}, {Name: "id", Value: "core"}}, r.Params())
}

func TestParamParser(t *testing.T) {
	type target struct {
		ID      int      `param:"id"`
		Ratio   float64  `param:"ratio"`
		Active  bool     `param:"active"`
		Name    string   `param:"name"`
		Count   uint8    `param:"count"`
		Tags    []string `param:"tag"`
		Ignored string
	}

	params := Params{
		{Name: "id", Value: "42"},
		{Name: "ratio", Value: "0.5"},
		{Name: "active", Value: "true"},
		{Name: "name", Value: "go"},
		{Name: "count", Value: "7"},
		{Name: "tag", Value: "x"},
		{Name: "tag", Value: "y"},
	}

	var got target
	require.NoError(t, NewParamParser().Parse(params, &got))
	assert.Equal(t, target{
		ID:     42,
		Ratio:  0.5,
		Active: true,
		Name:   "go",
		Count:  7,
		Tags:   []string{"x", "y"},
	}, got)
}

func TestParamParserErrors(t *testing.T) {
	p := NewParamParser()

	var notPointer struct{}
	assert.Error(t, p.Parse(nil, notPointer))

	s := "x"
	assert.Error(t, p.Parse(nil, &s))

	var bad struct {
		ID int `param:"id"`
	}
	err := p.Parse(Params{{Name: "id", Value: "abc"}}, &bad)
	assert.ErrorContains(t, err, `parsing param "id"`)

	var overflow struct {
		N int8 `param:"n"`
	}
	assert.Error(t, p.Parse(Params{{Name: "n", Value: "300"}}, &overflow))

	var unsupported struct {
		M map[string]string `param:"m"`
	}
	assert.Error(t, p.Parse(Params{{Name: "m", Value: "1"}}, &unsupported))

	assert.NoError(t, p.Parse(nil, nil))
}

func TestBindParams(t *testing.T) {
	r, _ := newTestRouter(t, "/users/42", []RouteDef{
		{Path: "users/:id", Component: comp("user")},
	})
	mount(t, r)

	var p struct {
		ID int `param:"id"`
	}
	require.NoError(t, r.BindParams(&p))
	assert.Equal(t, 42, p.ID)
}
