package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

func TestMergeThenUnmerge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.tables[0].ID, f.tables[1].ID, f.tables[2].ID

	v, err := f.svc.MergeTables(ctx, staff, []uint64{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, a, v.ID)
	assert.Equal(t, model.TableOccupied, v.Status)
	assert.Len(t, v.Satellites, 2)
	assert.Equal(t, 4+2+6, v.EffectiveCapacity)
	for _, s := range v.Satellites {
		require.NotNil(t, s.MergedWithID)
		assert.Equal(t, a, *s.MergedWithID)
		assert.Equal(t, model.TableOccupied, s.Status)
	}

	v, err = f.svc.UnmergeTables(ctx, staff, a)
	require.NoError(t, err)
	assert.Empty(t, v.Satellites)
	assert.Equal(t, 4, v.EffectiveCapacity)

	views, err := f.svc.ListTables(ctx)
	require.NoError(t, err)
	for _, tv := range views[:3] {
		assert.Equal(t, model.TableVacant, tv.Status, tv.Label)
		assert.Nil(t, tv.MergedWithID, tv.Label)
	}
}

func TestMergeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c, d := f.tables[0].ID, f.tables[1].ID, f.tables[2].ID, f.tables[3].ID

	_, err := f.svc.MergeTables(ctx, staff, []uint64{a})
	requireKind(t, err, InsufficientTables)
	_, err = f.svc.MergeTables(ctx, staff, []uint64{a, a})
	requireKind(t, err, InvalidInput)
	_, err = f.svc.MergeTables(ctx, staff, []uint64{a, 999})
	requireKind(t, err, InvalidReference)
	_, err = f.svc.MergeTables(ctx, kitchen, []uint64{a, b})
	requireKind(t, err, Unauthorized)

	_, err = f.svc.MergeTables(ctx, staff, []uint64{a, b})
	require.NoError(t, err)

	// b is a satellite; it cannot be merged again in either role.
	_, err = f.svc.MergeTables(ctx, staff, []uint64{c, b})
	requireKind(t, err, AlreadyMerged)
	_, err = f.svc.MergeTables(ctx, staff, []uint64{b, c})
	requireKind(t, err, AlreadyMerged)
	// a already has satellites; making it a satellite would chain.
	_, err = f.svc.MergeTables(ctx, staff, []uint64{c, a})
	requireKind(t, err, AlreadyMerged)

	// A primary may take on more satellites.
	v, err := f.svc.MergeTables(ctx, staff, []uint64{a, d})
	require.NoError(t, err)
	assert.Len(t, v.Satellites, 2)
	assert.Equal(t, 4+2+4, v.EffectiveCapacity)

	_, err = f.svc.UnmergeTables(ctx, staff, b)
	requireKind(t, err, InvalidInput)
	_, err = f.svc.UnmergeTables(ctx, staff, 999)
	requireKind(t, err, InvalidReference)
}

func TestUpdateTableStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.tables[3].ID

	v, err := f.svc.UpdateTableStatus(ctx, staff, id, model.TableReserved)
	require.NoError(t, err)
	assert.Equal(t, model.TableReserved, v.Status)

	_, err = f.svc.UpdateTableStatus(ctx, staff, id, "DIRTY")
	requireKind(t, err, InvalidInput)
	_, err = f.svc.UpdateTableStatus(ctx, staff, 999, model.TableVacant)
	requireKind(t, err, InvalidReference)
}

func TestGetTableUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetTable(context.Background(), 999)
	requireKind(t, err, InvalidReference)
}
