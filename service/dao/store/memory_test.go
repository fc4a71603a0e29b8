package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type widget struct {
	ID   string
	Name string
}

func TestMemory_CRUD(t *testing.T) {
	store := NewMemory[string, widget](func(w *widget) string { return w.ID })
	ctx := context.Background()

	assert.Nil(t, store.Save(ctx, &widget{ID: "w1", Name: "first"}))
	assert.Nil(t, store.Save(ctx, &widget{ID: "w2", Name: "second"}))
	assert.Nil(t, store.Save(ctx, &widget{ID: "w1", Name: "updated"}))

	loaded, err := store.Load(ctx, "w1")
	assert.Nil(t, err)
	assert.EqualValues(t, "updated", loaded.Name)

	listed, err := store.List(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, 2, len(listed))
	assert.EqualValues(t, "w1", listed[0].ID)

	assert.Nil(t, store.Delete(ctx, "w1"))
	assert.NotNil(t, store.Delete(ctx, "w1"))
	_, err = store.Load(ctx, "w1")
	assert.NotNil(t, err)

	listed, err = store.List(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, 1, len(listed))
}
