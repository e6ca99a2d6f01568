package datasetstore

import (
	"testing"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	"github.com/stretchr/testify/assert"
)

func TestStoreEmptyUntilReplaced(t *testing.T) {
	store := NewStore()

	ds, loaded := store.Get()
	assert.False(t, loaded)
	assert.Empty(t, ds.Vouchers)

	next := canonical.NewDataset()
	next.Company = canonical.Company{Name: "Acme Traders"}
	next.Sources = []string{"export-1.json"}
	store.Replace(next)

	ds, loaded = store.Get()
	assert.True(t, loaded)
	assert.Equal(t, "Acme Traders", ds.Company.Name)
	assert.Equal(t, []string{"export-1.json"}, ds.Sources)
}
