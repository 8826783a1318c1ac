package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psytech/suvichar/internal/catalog"
	"github.com/psytech/suvichar/internal/kv"
	"github.com/psytech/suvichar/internal/profile"
)

func run(t *testing.T, store kv.Store, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.openStore = func(context.Context) (kv.Store, func() error, error) {
		return store, func() error { return nil }, nil
	}
	root := a.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTemplatesList(t *testing.T) {
	out, err := run(t, nil, "templates", "list", "--category", "LOVE")
	require.NoError(t, err)

	var got []catalog.Template
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got)
	for _, tmpl := range got {
		assert.True(t, tmpl.HasCategory(catalog.Love))
		assert.Nil(t, tmpl.Name)
	}

	_, err = run(t, nil, "templates", "list", "--category", "BIRTHDAY")
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestTemplatesShowPremium(t *testing.T) {
	out, err := run(t, nil, "templates", "show", "tmpl_love_1", "--premium")
	require.NoError(t, err)

	var got catalog.Template
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "tmpl_love_1", got.ID)
	assert.NotNil(t, got.Name)
}

func TestTemplatesPreview(t *testing.T) {
	out, err := run(t, nil, "templates", "preview", "tmpl_festival_1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"))
}

func TestQuotesRandom(t *testing.T) {
	out, err := run(t, nil, "quotes", "random", "SHAYARI")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
}

func TestPremiumUpgradeStatusClear(t *testing.T) {
	store := kv.NewMemoryStore()

	_, err := run(t, store, "premium", "upgrade", "YEARLY")
	require.NoError(t, err)

	out, err := run(t, store, "premium", "status")
	require.NoError(t, err)
	assert.Contains(t, out, `"isPremium": true`)
	assert.Contains(t, out, `"planType": "YEARLY"`)

	_, err = run(t, store, "premium", "clear")
	require.NoError(t, err)
	out, err = run(t, store, "premium", "status")
	require.NoError(t, err)
	assert.Contains(t, out, `"isPremium": false`)
}

func TestProfileShowAndClear(t *testing.T) {
	store := kv.NewMemoryStore()
	_, err := run(t, store, "profile", "show")
	require.Error(t, err)

	_, err = profile.NewStore(store, nil).GetOrCreate(context.Background(), "+919876543210", profile.PurposeBusiness)
	require.NoError(t, err)

	out, err := run(t, store, "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "आपका व्यवसाय")

	_, err = run(t, store, "profile", "clear")
	require.NoError(t, err)
	_, err = run(t, store, "profile", "show")
	require.Error(t, err)
}
